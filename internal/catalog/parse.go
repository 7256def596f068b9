package catalog

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"exam_exchange/internal/examdate"
	"exam_exchange/internal/model"
)

// Detail is the structured content of an exam date detail page.
type Detail struct {
	OfferID   int64
	OfferedAt time.Time
	Subjects  []model.Subject
}

// ParseDetail reads a detail page. The subject list may be empty when the
// table is present but has no rows; a missing table is ErrParse.
func ParseDetail(r io.Reader) (*Detail, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read document: %w", ErrParse, err)
	}

	summary, err := parseSummary(doc)
	if err != nil {
		return nil, err
	}
	at, err := offeredAt(summary)
	if err != nil {
		return nil, err
	}
	subjects, err := parseSubjects(doc)
	if err != nil {
		return nil, err
	}
	return &Detail{OfferedAt: at, Subjects: subjects}, nil
}

// ParseCounterofferDates reads a search listing and returns its distinct
// dates in ascending order. Several slots on the same day collapse into one.
func ParseCounterofferDates(r io.Reader) ([]time.Time, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read document: %w", ErrParse, err)
	}

	container := doc.Find(listingContainer)
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: %s not found", ErrParse, listingContainer)
	}

	seen := make(map[time.Time]struct{})
	var dates []time.Time
	var rowErr error
	container.Find(listingRow).EachWithBreak(func(i int, row *goquery.Selection) bool {
		cell := row.Children().Eq(listingDateColumn)
		if cell.Length() == 0 {
			rowErr = fmt.Errorf("%w: listing row %d has no date column", ErrParse, i)
			return false
		}
		d, err := examdate.Parse(examdate.LayoutListing, cellText(cell), "")
		if err != nil {
			rowErr = fmt.Errorf("%w: listing row %d: %w", ErrParse, i, err)
			return false
		}
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates, nil
}

func parseSummary(doc *goquery.Document) (map[string]string, error) {
	table := doc.Find(summaryTable).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: %s not found", ErrParse, summaryTable)
	}

	rows := make(map[string]string)
	table.Find(summaryRow).Each(func(_ int, row *goquery.Selection) {
		key := cellText(row.Find(summaryKey).First())
		key = strings.TrimSpace(strings.TrimSuffix(key, ":"))
		if key == "" {
			return
		}
		rows[key] = cellText(row.Find(summaryValue).First())
	})
	return rows, nil
}

func offeredAt(summary map[string]string) (time.Time, error) {
	date, ok := summary[keyDate]
	if !ok || date == "" {
		return time.Time{}, fmt.Errorf("%w: summary has no %s row", ErrParse, keyDate)
	}

	layout := examdate.LayoutSingleRow
	clock, hasClock := summary[keyTime]
	if hasClock {
		layout = examdate.LayoutTwoRow
	}

	t, err := examdate.Parse(layout, date, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: offered date: %w", ErrParse, err)
	}
	return t, nil
}

func parseSubjects(doc *goquery.Document) ([]model.Subject, error) {
	table := doc.Find(subjectTable).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: %s not found", ErrParse, subjectTable)
	}

	var subjects []model.Subject
	var rowErr error
	table.Find(subjectRow).EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Children()
		code := cellText(cells.Eq(subjectCodeColumn))
		name := cellText(cells.Eq(subjectNameColumn))
		if code == "" || name == "" {
			rowErr = fmt.Errorf("%w: subject row %d is incomplete", ErrParse, i)
			return false
		}
		if slices.ContainsFunc(subjects, func(s model.Subject) bool { return s.Code == code }) {
			return true
		}
		subjects = append(subjects, model.Subject{Code: code, Name: name})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return subjects, nil
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
