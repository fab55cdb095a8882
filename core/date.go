package core

import "fmt"

// Date is a calendar date recovered from a media file. The fields are kept
// exactly as extracted; range checks happen when the date is turned into a
// destination path.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// DateSource names the extractor a resolved date came from.
type DateSource string

const (
	SourceNone     DateSource = ""
	SourceMetadata DateSource = "metadata"
	SourceFilename DateSource = "filename"
	SourceTakeout  DateSource = "takeout"
)
