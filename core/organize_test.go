package core

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

type testDirs struct {
	src    string
	photos string
	videos string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	root := t.TempDir()
	return testDirs{
		src:    filepath.Join(root, "src"),
		photos: filepath.Join(root, "photos"),
		videos: filepath.Join(root, "videos"),
	}
}

func (d testDirs) options() Options {
	return Options{
		MediaSrc:  d.src,
		PhotosDst: d.photos,
		VideosDst: d.videos,
	}
}

func runOrganizer(t *testing.T, opts Options) *Report {
	t.Helper()
	report, err := NewOrganizer(hclog.NewNullLogger(), opts).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return report
}

func TestOrganizer_Run(t *testing.T) {
	d := newTestDirs(t)
	writeFile(t, filepath.Join(d.src, "camera-001.jpg"), plainJPEG())
	writeFile(t, filepath.Join(d.src, "IMG-20200407-WA0004.jpg"), plainJPEG())

	report := runOrganizer(t, d.options())

	if report.Summary != (Summary{Moved: 1, Failed: 1}) {
		t.Fatalf("Summary = %+v, want 1 moved and 1 failed", report.Summary)
	}
	if len(report.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(report.Outcomes))
	}

	// Outcomes follow traversal order, and "IMG" sorts before "camera".
	moved, failed := report.Outcomes[0], report.Outcomes[1]
	if failed.Status != StatusFailed || !errors.Is(failed.Err, ErrDateUnresolved) {
		t.Errorf("camera-001.jpg outcome = %+v, want ErrDateUnresolved", failed)
	}
	if moved.Status != StatusMoved || moved.DateSource != SourceFilename {
		t.Errorf("IMG-20200407-WA0004.jpg outcome = %+v", moved)
	}

	want := filepath.Join(d.photos, "2020", "04 - April", "IMG-20200407-WA0004.jpg")
	if moved.Destination != want {
		t.Errorf("Destination = %q, want %q", moved.Destination, want)
	}
	if !fileExists(want) {
		t.Error("photo was not moved")
	}
	if !fileExists(filepath.Join(d.src, "camera-001.jpg")) {
		t.Error("unresolved photo should stay in place")
	}
	if report.RunID == "" || report.StartedAt.IsZero() || report.FinishedAt.Before(report.StartedAt) {
		t.Errorf("unexpected report header %+v", report)
	}
}

func TestOrganizer_MixedMedia(t *testing.T) {
	d := newTestDirs(t)
	writeFile(t, filepath.Join(d.src, "2019", "exif.jpeg"), exifJPEG(t, "2019:01:15 10:30:00"))
	writeFile(t, filepath.Join(d.src, "clips", "VID_20200829_205420.mp4"), []byte("video"))
	writeFile(t, filepath.Join(d.src, "notes.txt"), []byte("text"))
	writeFile(t, filepath.Join(d.src, "IMG-20200407-WA0004.JPEG"), plainJPEG())

	report := runOrganizer(t, d.options())

	if report.Summary != (Summary{Moved: 2, Skipped: 2}) {
		t.Fatalf("Summary = %+v, want 2 moved and 2 skipped", report.Summary)
	}
	for _, p := range []string{
		filepath.Join(d.photos, "2019", "01 - January", "exif.jpeg"),
		filepath.Join(d.videos, "2020", "VID_20200829_205420.mp4"),
	} {
		if !fileExists(p) {
			t.Errorf("expected %s to exist", p)
		}
	}
	for _, p := range []string{"notes.txt", "IMG-20200407-WA0004.JPEG"} {
		if !fileExists(filepath.Join(d.src, p)) {
			t.Errorf("unsupported file %s was moved", p)
		}
	}
	if err := report.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestOrganizer_Conflict(t *testing.T) {
	d := newTestDirs(t)
	src := filepath.Join(d.src, "IMG_20200407_1.jpg")
	dst := filepath.Join(d.photos, "2020", "04 - April", "IMG_20200407_1.jpg")
	writeFile(t, src, []byte("new"))
	writeFile(t, dst, []byte("old"))

	report := runOrganizer(t, d.options())

	if report.Summary.Failed != 1 {
		t.Fatalf("Summary = %+v, want 1 failure", report.Summary)
	}
	if !errors.Is(report.Outcomes[0].Err, ErrDestinationExists) {
		t.Errorf("Err = %v, want ErrDestinationExists", report.Outcomes[0].Err)
	}
	if !fileExists(src) || !fileExists(dst) {
		t.Error("conflicting files were touched")
	}
}

func TestOrganizer_DryRun(t *testing.T) {
	d := newTestDirs(t)
	src := filepath.Join(d.src, "20200829_205420.mp4")
	writeFile(t, src, []byte("video"))

	opts := d.options()
	opts.DryRun = true
	report := runOrganizer(t, opts)

	if report.Summary.Moved != 1 || !report.DryRun {
		t.Fatalf("report = %+v, want 1 planned move", report)
	}
	if !fileExists(src) {
		t.Error("dry run moved the source")
	}
	if fileExists(report.Outcomes[0].Destination) {
		t.Error("dry run created the destination")
	}
}

func TestOrganizer_MissingDestinationRoot(t *testing.T) {
	d := newTestDirs(t)
	writeFile(t, filepath.Join(d.src, "20200829_205420.mp4"), []byte("video"))
	writeFile(t, filepath.Join(d.src, "IMG_20200407_1.jpg"), plainJPEG())

	opts := d.options()
	opts.VideosDst = ""
	report := runOrganizer(t, opts)

	if report.Summary != (Summary{Moved: 1, Skipped: 1}) {
		t.Fatalf("Summary = %+v", report.Summary)
	}
	var video Outcome
	for _, o := range report.Outcomes {
		if o.Kind == Video {
			video = o
		}
	}
	if video.Status != StatusSkipped || !strings.Contains(video.Reason, "videos") {
		t.Errorf("video outcome = %+v, want a skip", video)
	}
}

func TestOrganizer_NestedDestination(t *testing.T) {
	d := newTestDirs(t)
	opts := d.options()
	opts.PhotosDst = filepath.Join(d.src, "organized")

	already := filepath.Join(opts.PhotosDst, "2019", "01 - January", "IMG_20190101_1.jpg")
	writeFile(t, already, plainJPEG())
	writeFile(t, filepath.Join(d.src, "IMG_20200407_1.jpg"), plainJPEG())

	report := runOrganizer(t, opts)

	if len(report.Outcomes) != 1 {
		t.Fatalf("got %d outcomes, want only the new photo", len(report.Outcomes))
	}
	if !fileExists(already) {
		t.Error("already organized photo was moved")
	}
	if !fileExists(filepath.Join(opts.PhotosDst, "2020", "04 - April", "IMG_20200407_1.jpg")) {
		t.Error("new photo was not moved")
	}
}

func TestOrganizer_SourceInsideDestination(t *testing.T) {
	pictures := t.TempDir()
	opts := Options{
		MediaSrc:  filepath.Join(pictures, "Incoming"),
		PhotosDst: pictures,
	}
	writeFile(t, filepath.Join(opts.MediaSrc, "IMG-20200407-WA0004.jpg"), plainJPEG())
	writeFile(t, filepath.Join(opts.MediaSrc, "phone", "IMG-20210101-WA0001.jpg"), plainJPEG())

	report := runOrganizer(t, opts)

	if report.Summary != (Summary{Moved: 2}) {
		t.Fatalf("Summary = %+v, want 2 moved", report.Summary)
	}
	for _, p := range []string{
		filepath.Join(pictures, "2020", "04 - April", "IMG-20200407-WA0004.jpg"),
		filepath.Join(pictures, "2021", "01 - January", "IMG-20210101-WA0001.jpg"),
	} {
		if !fileExists(p) {
			t.Errorf("expected %s to exist", p)
		}
	}
}

func TestOrganizer_DryRunMatchesRealRun(t *testing.T) {
	for _, dryRun := range []bool{true, false} {
		d := newTestDirs(t)
		writeFile(t, filepath.Join(d.src, "a", "IMG-20200407-WA0004.jpg"), []byte("a"))
		writeFile(t, filepath.Join(d.src, "b", "IMG-20200407-WA0004.jpg"), []byte("b"))

		opts := d.options()
		opts.DryRun = dryRun
		report := runOrganizer(t, opts)

		if report.Summary != (Summary{Moved: 1, Failed: 1}) {
			t.Errorf("dry run %v: Summary = %+v, want 1 moved and 1 failed", dryRun, report.Summary)
			continue
		}
		if !errors.Is(report.Outcomes[1].Err, ErrDestinationExists) {
			t.Errorf("dry run %v: Err = %v, want ErrDestinationExists", dryRun, report.Outcomes[1].Err)
		}
	}
}

func TestOrganizer_DryRunIsPerRun(t *testing.T) {
	d := newTestDirs(t)
	writeFile(t, filepath.Join(d.src, "IMG-20200407-WA0004.jpg"), plainJPEG())

	opts := d.options()
	opts.DryRun = true
	org := NewOrganizer(hclog.NewNullLogger(), opts)
	for i := 0; i < 2; i++ {
		report, err := org.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if report.Summary.Moved != 1 {
			t.Errorf("run %d: Summary = %+v, want 1 planned move", i, report.Summary)
		}
	}
}

func TestOrganizer_MoveLogLevel(t *testing.T) {
	for _, tt := range []struct {
		name     string
		progress bool
		wantLine bool
	}{
		{"plain", false, true},
		{"with progress bar", true, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDirs(t)
			writeFile(t, filepath.Join(d.src, "20200829_205420.mp4"), []byte("video"))

			var buf bytes.Buffer
			logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Info})

			opts := d.options()
			opts.Progress = tt.progress
			if _, err := NewOrganizer(logger, opts).Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got := strings.Contains(buf.String(), "moved file"); got != tt.wantLine {
				t.Errorf("INFO log has move line = %v, want %v:\n%s", got, tt.wantLine, buf.String())
			}
		})
	}
}

func TestOrganizer_InvalidMonthContinues(t *testing.T) {
	d := newTestDirs(t)
	writeFile(t, filepath.Join(d.src, "IMG-20201305-WA0001.jpg"), plainJPEG())
	writeFile(t, filepath.Join(d.src, "IMG-20201205-WA0001.jpg"), plainJPEG())

	report := runOrganizer(t, d.options())

	if report.Summary != (Summary{Moved: 1, Failed: 1}) {
		t.Fatalf("Summary = %+v", report.Summary)
	}
	var monthErr *InvalidMonthError
	if !errors.As(report.Outcomes[1].Err, &monthErr) {
		t.Errorf("Err = %v, want InvalidMonthError", report.Outcomes[1].Err)
	}

	err := report.Err()
	if err == nil || !strings.Contains(err.Error(), "IMG-20201305-WA0001.jpg") {
		t.Errorf("Err() = %v, want the failed file", err)
	}
	if !errors.As(err, &monthErr) {
		t.Errorf("Err() should wrap the per-file error")
	}
}

func TestOrganizer_Hooks(t *testing.T) {
	d := newTestDirs(t)
	writeFile(t, filepath.Join(d.src, "a.txt"), nil)
	writeFile(t, filepath.Join(d.src, "b.mp4"), nil)

	var startedID string
	var seen []Status
	opts := d.options()
	opts.OnStart = func(r *Report) error {
		startedID = r.RunID
		return nil
	}
	opts.OnOutcome = func(o Outcome) {
		seen = append(seen, o.Status)
	}

	report := runOrganizer(t, opts)

	if startedID == "" || startedID != report.RunID {
		t.Errorf("OnStart saw run %q, report has %q", startedID, report.RunID)
	}
	if len(seen) != 2 || seen[0] != StatusSkipped || seen[1] != StatusFailed {
		t.Errorf("OnOutcome saw %v", seen)
	}
}

func TestOrganizer_OnStartError(t *testing.T) {
	d := newTestDirs(t)
	src := filepath.Join(d.src, "IMG_20200407_1.jpg")
	writeFile(t, src, plainJPEG())

	boom := errors.New("journal unavailable")
	opts := d.options()
	opts.OnStart = func(*Report) error { return boom }

	_, err := NewOrganizer(hclog.NewNullLogger(), opts).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if !fileExists(src) {
		t.Error("file was moved although the run was aborted")
	}
}

func TestOrganizer_Cancelled(t *testing.T) {
	d := newTestDirs(t)
	src := filepath.Join(d.src, "IMG_20200407_1.jpg")
	writeFile(t, src, plainJPEG())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewOrganizer(hclog.NewNullLogger(), d.options()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(report.Outcomes) != 0 || !fileExists(src) {
		t.Error("cancelled run processed files")
	}
}

func TestOrganizer_MissingSource(t *testing.T) {
	d := newTestDirs(t)
	_, err := NewOrganizer(hclog.NewNullLogger(), d.options()).Run(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing media source")
	}
}

func TestOrganizer_Inspect(t *testing.T) {
	org := NewOrganizer(hclog.NewNullLogger(), Options{PhotosDst: "/photos"})

	tests := []struct {
		name       string
		entry      FileEntry
		wantStatus Status
		wantRel    string
		wantDst    string
	}{
		{
			name:    "photo",
			entry:   memEntry("IMG-20200407-WA0004.jpg", plainJPEG()),
			wantRel: filepath.Join("2020", "04 - April", "IMG-20200407-WA0004.jpg"),
			wantDst: filepath.Join("/photos", "2020", "04 - April", "IMG-20200407-WA0004.jpg"),
		},
		{
			name:    "video without a root",
			entry:   memEntry("20200829_205420.mp4", nil),
			wantRel: filepath.Join("2020", "20200829_205420.mp4"),
		},
		{
			name:       "unsupported",
			entry:      memEntry("notes.txt", nil),
			wantStatus: StatusSkipped,
		},
		{
			name:       "unresolved",
			entry:      memEntry("camera-001.jpg", plainJPEG()),
			wantStatus: StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := org.Inspect(tt.entry)
			if out.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", out.Status, tt.wantStatus)
			}
			if out.RelPath != tt.wantRel {
				t.Errorf("RelPath = %q, want %q", out.RelPath, tt.wantRel)
			}
			if out.Destination != tt.wantDst {
				t.Errorf("Destination = %q, want %q", out.Destination, tt.wantDst)
			}
		})
	}
}
