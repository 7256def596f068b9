package notify

import (
	"fmt"
	"strings"
	"time"

	"exam_exchange/internal/model"
)

const noValue = "unknown"

// FormatCreated formats the message confirming a new advert to its author.
func FormatCreated(view model.GeneralizedView, searchDates []time.Time, manageURL string) string {
	var b strings.Builder
	b.WriteString("Your exam date exchange advert has been published.\n\n")
	fmt.Fprintf(&b, "Offered exam date: %s\n", formatOffered(view.OfferedAt))
	if len(searchDates) > 0 {
		fmt.Fprintf(&b, "Wanted in exchange: %s\n", formatDates(searchDates))
	}
	b.WriteString("\nUse the following link to activate, deactivate or delete the advert.\n")
	b.WriteString("Anyone with this link can manage it, so do not share it.\n\n")
	b.WriteString(manageURL)
	b.WriteString("\n")
	return b.String()
}

// FormatReply wraps a message from an interested student.
func FormatReply(advert model.Advert, replyTo, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Someone is interested in your exam date of %s (%s).\n", formatOffered(advert.OfferedAt), advert.SubjectName)
	if advert.DesiredDate != nil {
		fmt.Fprintf(&b, "They offer the date of %s in exchange.\n", advert.DesiredDate.Format(model.DateLayout))
	}
	b.WriteString("\nTheir message:\n\n")
	b.WriteString(strings.TrimSpace(message))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Reply directly to %s to arrange the exchange.\n", replyTo)
	b.WriteString("Your advert has been hidden from the board. Activate it again if the exchange falls through.\n")
	return b.String()
}

// FormatAnnouncement formats a newly listed family for a chat channel.
func FormatAnnouncement(view model.GeneralizedView, subjects []model.Subject, searchDates []time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New exam date on offer: %s\n", formatOffered(view.OfferedAt))
	for _, s := range subjects {
		fmt.Fprintf(&b, "  %s %s\n", s.Code, s.Name)
	}
	if len(searchDates) > 0 {
		fmt.Fprintf(&b, "Wanted: %s\n", formatDates(searchDates))
	}
	return b.String()
}

func formatOffered(t *time.Time) string {
	if t == nil {
		return noValue
	}
	return t.Format(model.DateTimeLayout)
}

func formatDates(dates []time.Time) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.Format(model.DateLayout)
	}
	return strings.Join(parts, ", ")
}
