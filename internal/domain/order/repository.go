package order

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("order not found")

// Store is the shop's order store. Implementations return ErrNotFound for
// unknown ids and keys.
type Store interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetIDByKey(ctx context.Context, key string) (int64, error)
	// UpdateStatus moves the order to status and records note when non-empty.
	UpdateStatus(ctx context.Context, id int64, status Status, note string) error
	AddNote(ctx context.Context, id int64, note string) error
	UpdateMeta(ctx context.Context, id int64, key, value string) error
	// PaymentComplete marks the order paid and moves it to completed.
	PaymentComplete(ctx context.Context, id int64) error
	Notes(ctx context.Context, id int64) ([]Note, error)
}
