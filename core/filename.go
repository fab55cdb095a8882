package core

import (
	"path/filepath"
	"regexp"
	"strconv"
)

// Each pattern captures year, month and day, in that order. The patterns are
// anchored to the whole file name so a date buried in the middle of an
// unrelated name never counts.
var (
	photoNamePatterns = []*regexp.Regexp{
		// WhatsApp: IMG-20200407-WA0004.jpg
		regexp.MustCompile(`^IMG-(\d{4})(\d{2})(\d{2})-WA\d+\..*$`),
		// Android camera: IMG_20200407_123456.jpg
		regexp.MustCompile(`^IMG_(\d{4})(\d{2})(\d{2})_\d+\..*$`),
	}

	videoNamePatterns = []*regexp.Regexp{
		// 20200829_205420.mp4, VID-20200829-WA0001.mp4, VID_20200829_205420.mp4
		regexp.MustCompile(`^(?:VID[-_])?(\d{4})(\d{2})(\d{2})[_-].+\.mp4$`),
	}
)

// DateFromPhotoFilename extracts a date from photo names such as
// IMG-20200407-WA0004.jpg or IMG_20200407_123456.jpg.
func DateFromPhotoFilename(name string) (Date, bool) {
	return dateFromFilename(photoNamePatterns, name)
}

// DateFromVideoFilename extracts a date from video names such as
// 20200829_205420.mp4 or VID-20200829-WA0001.mp4.
func DateFromVideoFilename(name string) (Date, bool) {
	return dateFromFilename(videoNamePatterns, name)
}

func dateFromFilename(patterns []*regexp.Regexp, name string) (Date, bool) {
	name = filepath.Base(name)
	for _, re := range patterns {
		m := re.FindStringSubmatch(name)
		if len(m) != 4 {
			continue
		}

		// Values are taken as written. A month of 13 is reported as 13 and
		// rejected later, when it has to become a directory name.
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		month, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		day, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		return Date{Year: year, Month: month, Day: day}, true
	}
	return Date{}, false
}
