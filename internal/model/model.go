// Package model defines the domain types used across the application.
package model

import "time"

// Date layouts of the canonical representation.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

// Advert is one persisted row of a family: a single subject paired with a
// single desired date. Zero values stand for NULL columns: ExternalOfferID 0,
// empty SubjectCode/SubjectName, nil OfferedAt/DesiredDate.
type Advert struct {
	ID              int64
	Token           Token
	ExternalOfferID int64
	OfferedAt       *time.Time
	SubjectCode     string
	SubjectName     string
	DesiredDate     *time.Time
	ContactEmail    string
	Active          bool
	Highlighted     bool
}

// Subject is a subject served by an offered exam date, as listed by the catalog.
type Subject struct {
	Code string
	Name string
}

// Subject returns the subject this row represents.
func (a Advert) Subject() Subject {
	return Subject{Code: a.SubjectCode, Name: a.SubjectName}
}

// CloneShared returns a new, unsaved row carrying only the fields shared by
// the whole family. The identifier is never copied.
func (a Advert) CloneShared() Advert {
	return Advert{
		Token:           a.Token,
		ExternalOfferID: a.ExternalOfferID,
		OfferedAt:       copyTime(a.OfferedAt),
		ContactEmail:    a.ContactEmail,
		Active:          a.Active,
		Highlighted:     a.Highlighted,
	}
}

// CloneWithSubject returns CloneShared plus the subject fields.
func (a Advert) CloneWithSubject() Advert {
	c := a.CloneShared()
	c.SubjectCode = a.SubjectCode
	c.SubjectName = a.SubjectName
	return c
}

// GeneralizedView is a read-only projection of a family member with the
// per-variant fields (subject and desired date) cleared.
type GeneralizedView struct {
	Advert
}

// Generalize projects a on its family. It never touches the store.
func (a Advert) Generalize() GeneralizedView {
	g := a.CloneShared()
	g.ID = a.ID
	return GeneralizedView{Advert: g}
}

// SubjectInfo is local subject metadata used to resolve catalog queries.
type SubjectInfo struct {
	Code       string
	Title      string
	TitleLocal string
	Language   string
	Faculty    string
	Department string
	Status     string
}

// Subject statuses.
const (
	SubjectTaught = "V"
)

// LocalLanguage is the catalog's native language code.
const LocalLanguage = "CZE"

// DisplayName returns the title in the subject's teaching language, prefixed
// with a language flag.
func (s SubjectInfo) DisplayName() string {
	if s.Language == LocalLanguage {
		return "🇨🇿 " + s.TitleLocal
	}
	return "🇬🇧 " + s.Title
}

// DateOnly truncates t to its calendar date, keeping the location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
