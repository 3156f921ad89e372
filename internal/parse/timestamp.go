package parse

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var dayFirstLayouts = []string{
	"2/1/06", "2/1/2006",
	"2.1.06", "2.1.2006",
	"2-1-06", "2-1-2006",
}

var monthFirstLayouts = []string{
	"1/2/06", "1/2/2006",
	"1.2.06", "1.2.2006",
	"1-2-06", "1-2-2006",
}

// year-first dates are unambiguous and always tried last
var isoLayouts = []string{"2006-1-2", "2006/1/2", "2006.1.2"}

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
	"3:04PM",
	"3:04:05PM",
	"15.04",
	"15.04.05",
}

var meridiemFixer = strings.NewReplacer(
	"A. M.", "AM", "P. M.", "PM",
	"A.M.", "AM", "P.M.", "PM",
)

// TimestampNormalizer parses the combined "date, time" prefix of an export
// line by trying an ordered list of layouts.
type TimestampNormalizer struct {
	dateLayouts []string
}

// NewTimestampNormalizer tries day-first dates before month-first ones when
// dayFirst is set, and the reverse otherwise.
func NewTimestampNormalizer(dayFirst bool) *TimestampNormalizer {
	var layouts []string
	if dayFirst {
		layouts = append(layouts, dayFirstLayouts...)
		layouts = append(layouts, monthFirstLayouts...)
	} else {
		layouts = append(layouts, monthFirstLayouts...)
		layouts = append(layouts, dayFirstLayouts...)
	}
	layouts = append(layouts, isoLayouts...)
	return &TimestampNormalizer{dateLayouts: layouts}
}

var defaultNormalizer = NewTimestampNormalizer(true)

// NormalizeTimestamp uses the day-first layout order.
func NormalizeTimestamp(s string) Timestamp {
	return defaultNormalizer.Normalize(s)
}

// Normalize returns a Known timestamp only when both the date and the time
// parse; otherwise the zero Timestamp.
func (n *TimestampNormalizer) Normalize(s string) Timestamp {
	s = cleanSpaces(s)
	s = strings.Trim(s, "[]")
	s = strings.TrimSpace(strings.TrimSuffix(s, ","))
	if s == "" {
		return Timestamp{}
	}

	datePart, timePart, ok := strings.Cut(s, ",")
	if !ok {
		datePart, timePart, ok = strings.Cut(s, " ")
		if !ok {
			return Timestamp{}
		}
	}

	date, ok := n.parseDate(strings.TrimSpace(datePart))
	if !ok {
		return Timestamp{}
	}
	hour, ok := parseHour(strings.TrimSpace(timePart))
	if !ok {
		return Timestamp{}
	}
	return Timestamp{Date: date, Hour: hour, Known: true}
}

func (n *TimestampNormalizer) parseDate(s string) (time.Time, bool) {
	for _, layout := range n.dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseHour(s string) (int, bool) {
	s = meridiemFixer.Replace(strings.ToUpper(s))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}

// cleanSpaces folds compatibility spaces (U+202F before AM/PM, U+00A0, ...)
// to ASCII, drops invisible format marks such as U+200E and collapses runs
// of whitespace.
func cleanSpaces(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
