package main

import (
	"fmt"
	"strings"
	"time"

	"exam_exchange/internal/exchange"
	"exam_exchange/internal/model"
)

const (
	statusActive   = "active"
	statusInactive = "inactive"
)

// FormatDraft formats a newly created family.
func FormatDraft(d *exchange.Draft, manageURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Token: %s\n", d.Token)
	fmt.Fprintf(&b, "Manage: %s\n\n", manageURL)
	b.WriteString(FormatMembers(d.Members))
	if len(d.Counteroffers) > 0 {
		b.WriteString("\nAvailable dates to ask for:\n")
		b.WriteString(FormatDates(d.Counteroffers))
	}
	return b.String()
}

// FormatFamily formats a family for its token holder.
func FormatFamily(f *exchange.Family) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Offered: %s [%s]\n", offered(f.View.OfferedAt), status(f.View.Active))
	fmt.Fprintf(&b, "Contact: %s\n", f.View.ContactEmail)
	if len(f.Subjects) > 0 {
		b.WriteString("Subjects:\n")
		for _, s := range f.Subjects {
			fmt.Fprintf(&b, "  %s %s\n", s.Code, s.Name)
		}
	}
	if len(f.SearchDates) > 0 {
		b.WriteString("Wanted:\n")
		for _, d := range f.SearchDates {
			fmt.Fprintf(&b, "  %s\n", d.Format(model.DateLayout))
		}
	}
	fmt.Fprintf(&b, "Rows: %d\n", len(f.Members))
	return b.String()
}

// FormatMembers formats family rows, one per line.
func FormatMembers(members []model.Advert) string {
	var b strings.Builder
	for _, m := range members {
		fmt.Fprintf(&b, "#%d %s %s -> %s [%s]\n", m.ID, m.SubjectCode, offered(m.OfferedAt), desired(m.DesiredDate), status(m.Active))
	}
	return b.String()
}

// FormatBoard formats the public listing.
func FormatBoard(adverts []model.Advert) string {
	if len(adverts) == 0 {
		return "No adverts listed.\n"
	}
	var b strings.Builder
	for _, a := range adverts {
		mark := ""
		if a.Highlighted {
			mark = " *"
		}
		fmt.Fprintf(&b, "#%d%s %s %s\n", a.ID, mark, a.SubjectCode, a.SubjectName)
		fmt.Fprintf(&b, "   offers %s, wants %s\n", offered(a.OfferedAt), desired(a.DesiredDate))
	}
	return b.String()
}

// FormatDates formats dates, one per line.
func FormatDates(dates []time.Time) string {
	if len(dates) == 0 {
		return "No dates found.\n"
	}
	var b strings.Builder
	for _, d := range dates {
		fmt.Fprintf(&b, "%s\n", d.Format(model.DateLayout))
	}
	return b.String()
}

// FormatSubjects formats subject search results.
func FormatSubjects(subjects []model.SubjectInfo) string {
	if len(subjects) == 0 {
		return "No subjects found.\n"
	}
	var b strings.Builder
	for _, s := range subjects {
		fmt.Fprintf(&b, "%s %s\n", s.Code, s.DisplayName())
	}
	return b.String()
}

func status(active bool) string {
	if active {
		return statusActive
	}
	return statusInactive
}

func offered(t *time.Time) string {
	if t == nil {
		return "?"
	}
	return t.Format(model.DateTimeLayout)
}

func desired(t *time.Time) string {
	if t == nil {
		return "?"
	}
	return t.Format(model.DateLayout)
}
