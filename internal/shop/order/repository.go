package order

import (
	"context"
	"errors"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrValidation              = errors.New("missing required field")
	ErrUnauthorized            = errors.New("secret mismatch")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// Repository persists orders. Save upserts by order id.
type Repository interface {
	Save(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
}
