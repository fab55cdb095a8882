package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// InvalidMonthError is returned when a date whose month is outside 1-12
// reaches path building. File names are parsed leniently, so a name like
// IMG-20201305-WA0001.jpg gets this far and is rejected here.
type InvalidMonthError struct {
	Month int
}

func (e *InvalidMonthError) Error() string {
	return fmt.Sprintf("invalid month %d, should be between 1 and 12", e.Month)
}

// InvalidYearError is returned for dates with a year before 1.
type InvalidYearError struct {
	Year int
}

func (e *InvalidYearError) Error() string {
	return fmt.Sprintf("invalid year %d, should be positive", e.Year)
}

var errUnsupportedKind = errors.New("unsupported media kind has no destination")

// DestinationPath builds the path, relative to the kind's destination root,
// where a file named name should live:
//
//	photos: <year>/<MM> - <MonthName>/<name>
//	videos: <year>/<name>
func DestinationPath(kind MediaKind, d Date, name string) (string, error) {
	name = filepath.Base(name)
	if d.Year < 1 {
		return "", &InvalidYearError{Year: d.Year}
	}
	year := strconv.Itoa(d.Year)

	switch kind {
	case Photo:
		dir, err := monthDir(d.Month)
		if err != nil {
			return "", err
		}
		return filepath.Join(year, dir, name), nil

	case Video:
		return filepath.Join(year, name), nil

	default:
		return "", errUnsupportedKind
	}
}

// monthDir renders "04 - April".
func monthDir(month int) (string, error) {
	if month < 1 || month > 12 {
		return "", &InvalidMonthError{Month: month}
	}
	return fmt.Sprintf("%02d - %s", month, time.Month(month).String()), nil
}
