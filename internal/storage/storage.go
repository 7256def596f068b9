// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"exam_exchange/internal/model"
)

// ErrNotFound is returned when a token, id or code matches no rows.
var ErrNotFound = errors.New("not found")

// Storage is the interface for all persistence operations.
type Storage interface {
	CreateAdvert(ctx context.Context, a *model.Advert) error
	UpdateAdvert(ctx context.Context, a *model.Advert) error
	GetActiveAdvert(ctx context.Context, id int64) (*model.Advert, error)
	ListActiveAdverts(ctx context.Context, subjectCode string) ([]model.Advert, error)

	ListFamily(ctx context.Context, token model.Token) ([]model.Advert, error)
	ListFamilySearchDates(ctx context.Context, token model.Token) ([]time.Time, error)
	SetFamilyActive(ctx context.Context, token model.Token, active bool) (int64, error)
	DeleteFamily(ctx context.Context, token model.Token) (int64, error)

	PutSubject(ctx context.Context, s model.SubjectInfo) error
	GetSubject(ctx context.Context, code string) (*model.SubjectInfo, error)
	SearchSubjects(ctx context.Context, substring string) ([]model.SubjectInfo, error)

	// InTx runs fn against a Storage bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling InTx on a transaction-bound Storage reuses the transaction.
	InTx(ctx context.Context, fn func(tx Storage) error) error

	Close() error
}

// Error is the opaque failure of the underlying store. Its message names
// only the operation; the driver error is kept for logging via Unwrap.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "storage: " + e.Op + " failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
