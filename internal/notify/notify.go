// Package notify delivers advert notifications to authors and announces new
// listings.
package notify

import (
	"context"
	"time"

	"exam_exchange/internal/model"
)

// Notifier talks to advert authors.
type Notifier interface {
	// NotifyCreated sends the author the link managing their family.
	NotifyCreated(ctx context.Context, view model.GeneralizedView, searchDates []time.Time, manageURL string) error
	// NotifyReply forwards a message from an interested student. It reports
	// whether the message was delivered.
	NotifyReply(ctx context.Context, advert model.Advert, replyTo, message string) (bool, error)
}

// Announcer publishes newly listed families.
type Announcer interface {
	Announce(ctx context.Context, view model.GeneralizedView, subjects []model.Subject, searchDates []time.Time) error
}

// Discard drops every notification. Replies are never reported delivered.
type Discard struct{}

// NotifyCreated does nothing.
func (Discard) NotifyCreated(context.Context, model.GeneralizedView, []time.Time, string) error {
	return nil
}

// NotifyReply does nothing and reports no delivery.
func (Discard) NotifyReply(context.Context, model.Advert, string, string) (bool, error) {
	return false, nil
}

// Announce does nothing.
func (Discard) Announce(context.Context, model.GeneralizedView, []model.Subject, []time.Time) error {
	return nil
}
