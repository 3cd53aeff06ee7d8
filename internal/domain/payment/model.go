package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// Payment represents a settled (or attempted) payment against an invoice.
// Payment records originate from the external gateway integration; this
// service only consumes them to keep invoice balances consistent.
type Payment struct {
	ID string `db:"id" json:"id"`
	// IdempotencyKey prevents duplicate recording of the same gateway event
	IdempotencyKey string `db:"idempotency_key" json:"idempotency_key"`
	InvoiceID      string `db:"invoice_id" json:"invoice_id"`

	Amount   decimal.Decimal `db:"amount" json:"amount"`
	Currency string          `db:"currency" json:"currency"`

	PaymentMethodType types.PaymentMethodType `db:"payment_method_type" json:"payment_method_type"`
	PaymentStatus     types.PaymentStatus     `db:"payment_status" json:"payment_status"`

	ReceivedAt   *time.Time `db:"received_at" json:"received_at,omitempty"`
	RefundedAt   *time.Time `db:"refunded_at" json:"refunded_at,omitempty"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`

	Metadata      types.Metadata `db:"metadata" json:"metadata,omitempty"`
	EnvironmentID string         `db:"environment_id" json:"environment_id"`

	types.BaseModel
}

// NewPayment builds a succeeded payment record received at now
func NewPayment(ctx context.Context) *Payment {
	now := time.Now().UTC()
	return &Payment{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		PaymentStatus: types.PaymentStatusSucceeded,
		ReceivedAt:    &now,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

func (p *Payment) Validate() error {
	if p.InvoiceID == "" {
		return ierr.NewError("invoice_id is required").
			WithHint("Payment must reference an invoice").
			Mark(ierr.ErrValidation)
	}

	if !p.Amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": p.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if err := p.PaymentMethodType.Validate(); err != nil {
		return err
	}

	return p.PaymentStatus.Validate()
}
