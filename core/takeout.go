package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Google Photos Takeout writes one JSON sidecar per media file. Older exports
// use "<name>.json", newer ones "<name>.supplemental-metadata.json".
var takeoutSidecarSuffixes = []string{
	".json",
	".supplemental-metadata.json",
}

type takeoutMetadata struct {
	PhotoTakenTime struct {
		Timestamp string `json:"timestamp"`
	} `json:"photoTakenTime"`
}

// DateFromTakeoutSidecar looks for a Takeout sidecar next to the photo and
// returns the UTC date of its photoTakenTime. Like the EXIF reader, a missing
// or unreadable sidecar is "not found" rather than an error.
func DateFromTakeoutSidecar(logger hclog.Logger, photoPath string) (Date, bool) {
	for _, suffix := range takeoutSidecarSuffixes {
		sidecar := photoPath + suffix
		if _, err := os.Stat(sidecar); err != nil {
			continue
		}

		d, err := takeoutDate(sidecar)
		if err != nil {
			logger.Trace("unusable Takeout sidecar", "path", sidecar, "error", err)
			continue
		}
		return d, true
	}
	return Date{}, false
}

// takeoutDate reads photoTakenTime, unix seconds as a string, from a sidecar
// and returns its UTC calendar date.
func takeoutDate(sidecar string) (Date, error) {
	if sidecar == "" {
		return Date{}, errors.New("sidecar path cannot be empty")
	}

	raw, err := os.ReadFile(sidecar)
	if err != nil {
		return Date{}, fmt.Errorf("failed to read sidecar: %w", err)
	}

	var meta takeoutMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Date{}, fmt.Errorf("failed to decode sidecar %q: %w", sidecar, err)
	}

	taken := meta.PhotoTakenTime.Timestamp
	if taken == "" {
		return Date{}, fmt.Errorf("sidecar %q has no photoTakenTime", sidecar)
	}
	seconds, err := strconv.ParseInt(taken, 10, 64)
	if err != nil {
		return Date{}, fmt.Errorf("invalid photoTakenTime %q: %w", taken, err)
	}

	t := time.Unix(seconds, 0).UTC()
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}
