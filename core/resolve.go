package core

import (
	"github.com/hashicorp/go-hclog"
)

// Resolver picks the date that governs where a file is placed.
//
// Photos: EXIF metadata first, then the file name, then (only when enabled)
// a Google Takeout sidecar. Videos: the file name only.
type Resolver struct {
	logger          hclog.Logger
	takeoutSidecars bool
}

func NewResolver(logger hclog.Logger, takeoutSidecars bool) *Resolver {
	return &Resolver{
		logger:          logger,
		takeoutSidecars: takeoutSidecars,
	}
}

// Resolve returns the date for entry and the extractor that produced it. The
// boolean is false when no extractor found a date.
func (r *Resolver) Resolve(entry FileEntry, kind MediaKind) (Date, DateSource, bool) {
	switch kind {
	case Photo:
		if d, ok := r.photoMetadataDate(entry); ok {
			return d, SourceMetadata, true
		}
		if d, ok := DateFromPhotoFilename(entry.Name); ok {
			return d, SourceFilename, true
		}
		if r.takeoutSidecars {
			if d, ok := DateFromTakeoutSidecar(r.logger, entry.Path); ok {
				return d, SourceTakeout, true
			}
		}
		return Date{}, SourceNone, false

	case Video:
		if d, ok := DateFromVideoFilename(entry.Name); ok {
			return d, SourceFilename, true
		}
		return Date{}, SourceNone, false

	default:
		return Date{}, SourceNone, false
	}
}

func (r *Resolver) photoMetadataDate(entry FileEntry) (Date, bool) {
	if entry.Open == nil {
		return Date{}, false
	}

	f, err := entry.Open()
	if err != nil {
		r.logger.Debug("failed to open photo for metadata", "path", entry.Path, "error", err)
		return Date{}, false
	}
	defer f.Close()

	return DateFromMetadata(r.logger.With("path", entry.Path), f)
}
