package payment

import (
	"context"
)

// Repository defines the interface for payment persistence operations
type Repository interface {
	// Create creates a new payment record
	Create(ctx context.Context, p *Payment) error

	// Get retrieves a payment by ID
	Get(ctx context.Context, id string) (*Payment, error)

	// GetByIdempotencyKey retrieves a payment by its idempotency key
	GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error)

	// Update updates an existing payment
	Update(ctx context.Context, p *Payment) error

	// Delete removes a payment record
	Delete(ctx context.Context, id string) error

	// ListByInvoice retrieves all payments recorded against an invoice
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error)
}
