package family

import (
	"context"
	"fmt"
	"time"

	"exam_exchange/internal/model"
	"exam_exchange/internal/storage"
)

// Lifecycle runs operations that address a whole family by its token.
type Lifecycle struct {
	store storage.Storage
}

// NewLifecycle creates a Lifecycle backed by store.
func NewLifecycle(store storage.Storage) *Lifecycle {
	return &Lifecycle{store: store}
}

// ListMembers returns every row of the family, or storage.ErrNotFound.
// Holding a token that matches rows is the only authorization there is.
func (l *Lifecycle) ListMembers(ctx context.Context, token model.Token) ([]model.Advert, error) {
	members, err := l.store.ListFamily(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list family: %w", err)
	}
	return members, nil
}

// ListDistinctSearchDates returns the union of desired dates across the family.
func (l *Lifecycle) ListDistinctSearchDates(ctx context.Context, token model.Token) ([]time.Time, error) {
	dates, err := l.store.ListFamilySearchDates(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list search dates: %w", err)
	}
	return dates, nil
}

// Activate lists every row of the family. It is idempotent.
func (l *Lifecycle) Activate(ctx context.Context, token model.Token) error {
	if _, err := l.store.SetFamilyActive(ctx, token, true); err != nil {
		return fmt.Errorf("activate family: %w", err)
	}
	return nil
}

// Deactivate hides every row of the family. It is idempotent.
func (l *Lifecycle) Deactivate(ctx context.Context, token model.Token) error {
	if _, err := l.store.SetFamilyActive(ctx, token, false); err != nil {
		return fmt.Errorf("deactivate family: %w", err)
	}
	return nil
}

// Delete removes every row of the family and reports how many were removed.
// Deleting an unknown or already deleted token succeeds with zero rows.
func (l *Lifecycle) Delete(ctx context.Context, token model.Token) (int64, error) {
	n, err := l.store.DeleteFamily(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("delete family: %w", err)
	}
	return n, nil
}

// Generalize projects a member on its family without touching the store.
func (l *Lifecycle) Generalize(member model.Advert) model.GeneralizedView {
	return member.Generalize()
}
