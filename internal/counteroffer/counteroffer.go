// Package counteroffer looks up the alternative exam dates a subject offers.
package counteroffer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"exam_exchange/internal/model"
)

// SubjectResolver resolves local subject metadata by code.
type SubjectResolver interface {
	GetSubject(ctx context.Context, code string) (*model.SubjectInfo, error)
}

// DateSource lists future exam dates of one subject.
type DateSource interface {
	FetchCounterofferDates(ctx context.Context, subjectCode, faculty, department string) ([]time.Time, error)
}

// Finder resolves subjects and queries the catalog for their future dates.
type Finder struct {
	subjects SubjectResolver
	source   DateSource
}

// New creates a Finder.
func New(subjects SubjectResolver, source DateSource) *Finder {
	return &Finder{subjects: subjects, source: source}
}

// Find returns the distinct future dates of subjectCode in ascending order.
// A listing without rows yields an empty result, not an error.
func (f *Finder) Find(ctx context.Context, subjectCode string) ([]time.Time, error) {
	subj, err := f.subjects.GetSubject(ctx, subjectCode)
	if err != nil {
		return nil, fmt.Errorf("resolve subject %s: %w", subjectCode, err)
	}
	dates, err := f.source.FetchCounterofferDates(ctx, subj.Code, subj.Faculty, subj.Department)
	if err != nil {
		return nil, fmt.Errorf("fetch dates of %s: %w", subjectCode, err)
	}
	return distinct(dates), nil
}

// FindAll returns the union of Find over every code.
func (f *Finder) FindAll(ctx context.Context, subjectCodes []string) ([]time.Time, error) {
	var all []time.Time
	for _, code := range subjectCodes {
		dates, err := f.Find(ctx, code)
		if err != nil {
			return nil, err
		}
		all = append(all, dates...)
	}
	return distinct(all), nil
}

func distinct(dates []time.Time) []time.Time {
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = model.DateOnly(d)
		if !slices.ContainsFunc(out, d.Equal) {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}
