// Package family materialises an advert as the cross-product of the subjects
// its exam date serves and the dates its author accepts in exchange, and
// runs family-wide lifecycle operations keyed by the family token.
package family

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"exam_exchange/internal/model"
	"exam_exchange/internal/storage"
)

// Expansion errors.
var (
	ErrNoSubjectsFound  = errors.New("no subjects found for the offered exam date")
	ErrNoDates          = errors.New("no desired dates given")
	ErrAlreadyExpanded  = errors.New("family already has desired dates")
	ErrNotExpanded      = errors.New("family has no desired dates yet")
	errSeedNotGenerated = errors.New("seed has no id or token")
)

// Expander persists family members. Give it a transaction-bound Storage so
// a failure part-way cannot leave a partial family behind.
type Expander struct {
	store storage.Storage
}

// NewExpander creates an Expander writing through store.
func NewExpander(store storage.Storage) *Expander {
	return &Expander{store: store}
}

// Generate assigns a fresh token to an unsaved seed and inserts it.
func (e *Expander) Generate(ctx context.Context, seed *model.Advert) error {
	tok, err := model.NewToken()
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	seed.ID = 0
	seed.Token = tok
	if err := e.store.CreateAdvert(ctx, seed); err != nil {
		return fmt.Errorf("insert seed: %w", err)
	}
	return nil
}

// ExpandBySubjects applies the first subject to the seed in place and
// inserts one clone of the seed's shared fields per remaining subject.
// Duplicate codes are ignored. It returns all members, seed first.
func (e *Expander) ExpandBySubjects(ctx context.Context, seed *model.Advert, subjects []model.Subject) ([]model.Advert, error) {
	if seed.ID == 0 || seed.Token.IsZero() {
		return nil, errSeedNotGenerated
	}
	subjects = distinctSubjects(subjects)
	if len(subjects) == 0 {
		return nil, ErrNoSubjectsFound
	}

	seed.SubjectCode = subjects[0].Code
	seed.SubjectName = subjects[0].Name
	if err := e.store.UpdateAdvert(ctx, seed); err != nil {
		return nil, fmt.Errorf("update seed: %w", err)
	}

	members := make([]model.Advert, 0, len(subjects))
	members = append(members, *seed)
	for _, subj := range subjects[1:] {
		clone := seed.CloneShared()
		clone.SubjectCode = subj.Code
		clone.SubjectName = subj.Name
		if err := e.store.CreateAdvert(ctx, &clone); err != nil {
			return nil, fmt.Errorf("insert subject %s: %w", subj.Code, err)
		}
		members = append(members, clone)
	}
	return members, nil
}

// ExpandBySearchDates sets the first date on every member in place and
// inserts one clone of every member per remaining date. Duplicate dates are
// ignored. It returns all members: the updated ones first, then the clones
// grouped by date.
func (e *Expander) ExpandBySearchDates(ctx context.Context, members []model.Advert, dates []time.Time) ([]model.Advert, error) {
	dates = distinctDates(dates)
	if len(dates) == 0 {
		return nil, ErrNoDates
	}
	if len(members) == 0 {
		return nil, ErrNoSubjectsFound
	}

	out := make([]model.Advert, 0, len(members)*len(dates))
	for _, m := range members {
		m.DesiredDate = datePtr(dates[0])
		if err := e.store.UpdateAdvert(ctx, &m); err != nil {
			return nil, fmt.Errorf("update member %d: %w", m.ID, err)
		}
		out = append(out, m)
	}

	base := out[:len(members):len(members)]
	for _, d := range dates[1:] {
		for _, m := range base {
			clone := m.CloneWithSubject()
			clone.DesiredDate = datePtr(d)
			if err := e.store.CreateAdvert(ctx, &clone); err != nil {
				return nil, fmt.Errorf("insert date %s for %s: %w", d.Format(model.DateLayout), m.SubjectCode, err)
			}
			out = append(out, clone)
		}
	}
	return out, nil
}

func distinctSubjects(subjects []model.Subject) []model.Subject {
	var out []model.Subject
	for _, s := range subjects {
		if s.Code == "" {
			continue
		}
		if slices.ContainsFunc(out, func(o model.Subject) bool { return o.Code == s.Code }) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func distinctDates(dates []time.Time) []time.Time {
	var out []time.Time
	for _, d := range dates {
		d = model.DateOnly(d)
		if slices.ContainsFunc(out, d.Equal) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func datePtr(t time.Time) *time.Time {
	d := model.DateOnly(t)
	return &d
}
