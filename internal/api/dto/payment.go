package dto

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ledgerflow/ledgerflow/internal/domain/payment"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// RecordPaymentRequest represents a request to record a settled payment
// against an invoice
type RecordPaymentRequest struct {
	IdempotencyKey    string                  `json:"idempotency_key,omitempty"`
	InvoiceID         string                  `json:"invoice_id" binding:"required"`
	Amount            decimal.Decimal         `json:"amount" binding:"required"`
	Currency          string                  `json:"currency" binding:"required"`
	PaymentMethodType types.PaymentMethodType `json:"payment_method_type" binding:"required"`
	Metadata          types.Metadata          `json:"metadata,omitempty"`
}

func (r *RecordPaymentRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHint("Payment amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return r.PaymentMethodType.Validate()
}

// ToPayment converts the request to a domain payment
func (r *RecordPaymentRequest) ToPayment(ctx context.Context) *payment.Payment {
	p := payment.NewPayment(ctx)
	p.IdempotencyKey = r.IdempotencyKey
	if p.IdempotencyKey == "" {
		p.IdempotencyKey = types.GenerateUUID()
	}
	p.InvoiceID = r.InvoiceID
	p.Amount = r.Amount
	p.Currency = r.Currency
	p.PaymentMethodType = r.PaymentMethodType
	p.Metadata = r.Metadata
	p.EnvironmentID = types.GetEnvironmentID(ctx)
	return p
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	*payment.Payment
}
