package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerflow/ledgerflow/internal/domain/paymentplan"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// CreatePaymentPlanRequest represents a request to set up an amortized
// payment plan
type CreatePaymentPlanRequest struct {
	CustomerID       string                 `json:"customer_id" binding:"required"`
	InvoiceID        *string                `json:"invoice_id,omitempty"`
	Currency         string                 `json:"currency" binding:"required"`
	TotalAmount      decimal.Decimal        `json:"total_amount" binding:"required"`
	InstallmentCount int                    `json:"installment_count" binding:"required"`
	Frequency        types.BillingFrequency `json:"frequency,omitempty"`
	IntervalValue    int                    `json:"interval_value,omitempty"`
	StartDate        time.Time              `json:"start_date" binding:"required"`
}

func (r *CreatePaymentPlanRequest) Validate() error {
	if !r.TotalAmount.IsPositive() {
		return ierr.NewError("total_amount must be positive").
			WithHint("Payment plan total must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	if r.InstallmentCount < 1 {
		return ierr.NewError("installment_count must be at least 1").
			WithHint("Payment plan must have at least one installment").
			Mark(ierr.ErrValidation)
	}
	if r.Frequency != "" {
		return r.Frequency.Validate()
	}
	return nil
}

// ToPlan converts the request to a domain plan
func (r *CreatePaymentPlanRequest) ToPlan(ctx context.Context) *paymentplan.Plan {
	plan := paymentplan.NewPlan(ctx)
	plan.CustomerID = r.CustomerID
	plan.InvoiceID = r.InvoiceID
	plan.Currency = r.Currency
	plan.TotalAmount = r.TotalAmount
	plan.InstallmentCount = r.InstallmentCount
	if r.Frequency != "" {
		plan.Frequency = r.Frequency
	}
	if r.IntervalValue > 0 {
		plan.IntervalValue = r.IntervalValue
	}
	plan.StartDate = r.StartDate
	plan.EnvironmentID = types.GetEnvironmentID(ctx)
	return plan
}

// ApplyInstallmentPaymentRequest applies an amount to one installment
type ApplyInstallmentPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func (r *ApplyInstallmentPaymentRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHint("Installment payment amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentPlanResponse represents a plan with its installment schedule
type PaymentPlanResponse struct {
	*paymentplan.Plan
	Installments []*paymentplan.Installment `json:"installments,omitempty"`
}
