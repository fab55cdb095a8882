package core

import (
	"path/filepath"
	"strings"
)

// MediaKind is the closed set of file kinds the organizer knows how to place.
type MediaKind int

const (
	Unsupported MediaKind = iota
	Photo
	Video
)

func (k MediaKind) String() string {
	switch k {
	case Photo:
		return "photo"
	case Video:
		return "video"
	default:
		return "unsupported"
	}
}

// Extension matching is case-sensitive: "JPG" is a photo but "JPEG" is not,
// and only lowercase "mp4" is a video.
var (
	photoExts = map[string]struct{}{
		"jpeg": {},
		"jpg":  {},
		"JPG":  {},
	}
	videoExts = map[string]struct{}{
		"mp4": {},
	}
)

// Classify determines the media kind of a file from its extension alone.
func Classify(name string) MediaKind {
	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(name)), ".")
	if ext == "" {
		return Unsupported
	}
	if _, ok := photoExts[ext]; ok {
		return Photo
	}
	if _, ok := videoExts[ext]; ok {
		return Video
	}
	return Unsupported
}
