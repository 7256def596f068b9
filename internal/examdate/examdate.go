// Package examdate parses the catalog's locale-specific exam date strings.
//
// The catalog prints the same "Date" field in different layouts depending on
// the page, so callers name the layout they expect instead of letting the
// parser guess. Times are taken as the catalog's local wall clock, no zone
// conversion is applied.
package examdate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"exam_exchange/internal/model"
)

// ErrMalformedDate is returned when a string does not match the requested layout.
var ErrMalformedDate = errors.New("malformed date")

// Layout identifies one of the catalog's known date layouts.
type Layout int

// Known layouts.
const (
	// LayoutTwoRow is the detail page variant with separate Date and Time
	// rows: "Jun 12, 2024 - Wednesday" and "08:00".
	LayoutTwoRow Layout = iota + 1
	// LayoutSingleRow is the detail page variant with date and time in one
	// row: "12.06.2024 08:00".
	LayoutSingleRow
	// LayoutListing is the date column of search listings: "12.06.2024".
	LayoutListing
)

const (
	longDate  = "Jan 2, 2006 - Monday"
	clock     = "15:04"
	dotted    = "02.01.2006"
	dottedDT  = "02.01.2006 15:04"
	minLength = len("2.1.2006")
)

func (l Layout) String() string {
	switch l {
	case LayoutTwoRow:
		return "two-row"
	case LayoutSingleRow:
		return "single-row"
	case LayoutListing:
		return "listing"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// HasTime reports whether the layout carries a time of day.
func (l Layout) HasTime() bool {
	return l == LayoutTwoRow || l == LayoutSingleRow
}

// Parse converts date (and, for LayoutTwoRow, clockText) into a timestamp in
// UTC representing the catalog's local wall clock. clockText is ignored by
// the other layouts.
func Parse(layout Layout, date, clockText string) (time.Time, error) {
	date = normalize(date)
	if len(date) < minLength {
		return time.Time{}, fmt.Errorf("%w: %q is too short", ErrMalformedDate, date)
	}

	var (
		t   time.Time
		err error
	)
	switch layout {
	case LayoutTwoRow:
		c := normalize(clockText)
		if c == "" {
			return time.Time{}, fmt.Errorf("%w: missing time for %q", ErrMalformedDate, date)
		}
		t, err = time.Parse(longDate+" "+clock, date+" "+c)
	case LayoutSingleRow:
		t, err = time.Parse(dottedDT, date)
	case LayoutListing:
		t, err = time.Parse(dotted, date)
	default:
		return time.Time{}, fmt.Errorf("%w: unknown layout %s", ErrMalformedDate, layout)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q as %s: %w", ErrMalformedDate, date, layout, err)
	}
	return t, nil
}

// Canonical renders t as YYYY-MM-DD or YYYY-MM-DD HH:MM.
func Canonical(t time.Time, withTime bool) string {
	if withTime {
		return t.Format(model.DateTimeLayout)
	}
	return t.Format(model.DateLayout)
}

// ParseCanonicalDate parses a YYYY-MM-DD string as supplied by advert authors.
func ParseCanonicalDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrMalformedDate, s, err)
	}
	return t, nil
}

// normalize collapses the non-breaking and repeated spaces the catalog emits.
func normalize(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
