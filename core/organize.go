package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// ErrDateUnresolved is the per-file failure for supported files where no
// extractor produced a date.
var ErrDateUnresolved = errors.New("failed to get a date from metadata or file name")

type Status string

const (
	StatusMoved   Status = "moved"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is what happened to a single file.
type Outcome struct {
	Source     string
	Kind       MediaKind
	Status     Status
	Date       Date
	DateSource DateSource

	// RelPath is relative to the kind's destination root; Destination is
	// the absolute target. Both are empty when no destination was computed.
	RelPath     string
	Destination string

	Reason string
	Err    error
}

type Summary struct {
	Moved   int
	Skipped int
	Failed  int
}

// Report collects the outcomes of one organizer run in traversal order.
type Report struct {
	RunID      string
	MediaSrc   string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
	Summary    Summary
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusMoved:
		r.Summary.Moved++
	case StatusSkipped:
		r.Summary.Skipped++
	case StatusFailed:
		r.Summary.Failed++
	}
}

// Failures returns the failed outcomes in traversal order.
func (r *Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err combines every per-file failure, or returns nil if there were none.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, o := range r.Failures() {
		result = multierror.Append(result, fmt.Errorf("%s: %w", o.Source, o.Err))
	}
	return result.ErrorOrNil()
}

// Options configures an Organizer. At least one of PhotosDst and VideosDst
// should be set; files of a kind without a destination are skipped.
type Options struct {
	MediaSrc  string
	PhotosDst string
	VideosDst string

	DryRun          bool
	TakeoutSidecars bool

	// Progress shows a progress bar while running. Per-file moves are then
	// logged at DEBUG instead of INFO.
	Progress bool

	// Mover overrides the mover picked from DryRun.
	Mover Mover

	// OnStart, if set, is called with the empty report before the first
	// file. Returning an error aborts the run.
	OnStart func(*Report) error

	// OnOutcome, if set, is called after every file with its outcome.
	OnOutcome func(Outcome)
}

// Organizer runs the classify, resolve, place and move pipeline one file at
// a time. A failure on one file never stops the others.
type Organizer struct {
	logger   hclog.Logger
	opts     Options
	resolver *Resolver
	mover    Mover
}

func NewOrganizer(logger hclog.Logger, opts Options) *Organizer {
	mover := opts.Mover
	if mover == nil {
		if opts.DryRun {
			mover = NewDryRunMover()
		} else {
			mover = FileMover{}
		}
	}

	return &Organizer{
		logger:   logger,
		opts:     opts,
		resolver: NewResolver(logger.Named("resolver"), opts.TakeoutSidecars),
		mover:    mover,
	}
}

// Run walks the media source and processes every file found. The returned
// error is only set when the walk itself could not complete, e.g. the source
// is missing or ctx was cancelled; per-file failures are in the report.
func (o *Organizer) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		MediaSrc:  o.opts.MediaSrc,
		DryRun:    o.opts.DryRun,
		StartedAt: time.Now().UTC(),
	}
	exclude := o.destinationRoots()
	if o.opts.Mover == nil && o.opts.DryRun {
		// Planned destinations belong to one run.
		o.mover = NewDryRunMover()
	}

	if o.opts.OnStart != nil {
		if err := o.opts.OnStart(report); err != nil {
			return report, err
		}
	}

	progress := newProgress(0, false)
	if o.opts.Progress {
		total, err := countFiles(o.logger, o.opts.MediaSrc, exclude)
		if err != nil {
			return report, err
		}
		progress = newProgress(total, true)
	}
	defer progress.Finish()

	err := Walk(o.logger, o.opts.MediaSrc, exclude, func(entry FileEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		out := o.Process(entry)
		report.add(out)
		if o.opts.OnOutcome != nil {
			o.opts.OnOutcome(out)
		}
		progress.Increment()
		return nil
	})
	report.FinishedAt = time.Now().UTC()
	return report, err
}

// Process takes a single file through the pipeline.
func (o *Organizer) Process(entry FileEntry) Outcome {
	out, err := o.plan(entry, true)
	if err != nil {
		return o.failed(out, err)
	}
	if out.Status == StatusSkipped {
		o.logger.Debug("skipping file", "path", entry.Path, "reason", out.Reason)
		return out
	}

	if err := o.mover.Move(entry.Path, out.Destination); err != nil {
		return o.failed(out, err)
	}

	out.Status = StatusMoved
	msg := "moved file"
	if o.opts.DryRun {
		msg = "would move file"
	}
	// Per-file lines would break up the progress bar, which shares stderr.
	level := hclog.Info
	if o.opts.Progress {
		level = hclog.Debug
	}
	o.logger.Log(level, msg, "path", entry.Path, "destination", out.Destination, "date", out.Date, "source", out.DateSource)
	return out
}

// Inspect reports where entry would be placed without moving it or checking
// the destination. Unlike Process it also works for kinds that have no
// destination configured, in which case only RelPath is set.
func (o *Organizer) Inspect(entry FileEntry) Outcome {
	out, err := o.plan(entry, false)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
	}
	return out
}

// plan classifies entry, resolves its date and computes its destination.
// Skips are reported through the outcome status, failures through err.
func (o *Organizer) plan(entry FileEntry, requireRoot bool) (Outcome, error) {
	out := Outcome{
		Source: entry.Path,
		Kind:   Classify(entry.Name),
	}

	if out.Kind == Unsupported {
		return skipped(out, "unsupported file type"), nil
	}

	root := o.root(out.Kind)
	if root == "" && requireRoot {
		return skipped(out, fmt.Sprintf("no destination configured for %ss", out.Kind)), nil
	}

	date, source, ok := o.resolver.Resolve(entry, out.Kind)
	if !ok {
		return out, ErrDateUnresolved
	}
	out.Date = date
	out.DateSource = source

	rel, err := DestinationPath(out.Kind, date, entry.Name)
	if err != nil {
		return out, fmt.Errorf("failed to get destination dir: %w", err)
	}
	out.RelPath = rel
	if root != "" {
		out.Destination = filepath.Join(root, rel)
	}
	return out, nil
}

func (o *Organizer) failed(out Outcome, err error) Outcome {
	o.logger.Warn("failed to organize file", "path", out.Source, "kind", out.Kind, "error", err)
	out.Status = StatusFailed
	out.Err = err
	return out
}

func skipped(out Outcome, reason string) Outcome {
	out.Status = StatusSkipped
	out.Reason = reason
	return out
}

func (o *Organizer) root(kind MediaKind) string {
	switch kind {
	case Photo:
		return o.opts.PhotosDst
	case Video:
		return o.opts.VideosDst
	default:
		return ""
	}
}

// destinationRoots keeps the walk out of destinations nested in the source,
// where freshly moved files would otherwise be visited again.
func (o *Organizer) destinationRoots() []string {
	var roots []string
	for _, r := range []string{o.opts.PhotosDst, o.opts.VideosDst} {
		if r != "" {
			roots = append(roots, r)
		}
	}
	return roots
}
