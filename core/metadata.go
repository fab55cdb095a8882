package core

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/rwcarlsen/goexif/exif"
)

const exifDateLayout = "2006:01:02 15:04:05"

// DateFromMetadata reads the EXIF DateTimeOriginal field from a photo.
//
// Missing or broken metadata is an everyday condition for photos that went
// through messengers or editors, so every failure in here, including a panic
// inside the EXIF decoder, is reported as "not found" and never as an error.
func DateFromMetadata(logger hclog.Logger, r io.Reader) (Date, bool) {
	t, err := exifDateTimeOriginal(r)
	if err != nil {
		logger.Trace("no usable EXIF date", "error", err)
		return Date{}, false
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, true
}

func exifDateTimeOriginal(r io.Reader) (t time.Time, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("exif decoder panicked: %v", p)
		}
	}()

	// A broken GPS or interop sub-directory still leaves the main fields
	// readable, so only critical decode errors end the lookup here.
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return time.Time{}, fmt.Errorf("failed to decode EXIF: %w", err)
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read DateTimeOriginal: %w", err)
	}

	value, err := tag.StringVal()
	if err != nil {
		return time.Time{}, fmt.Errorf("DateTimeOriginal is not a string: %w", err)
	}

	t, err = time.ParseInLocation(exifDateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse DateTimeOriginal %q: %w", value, err)
	}
	return t, nil
}
