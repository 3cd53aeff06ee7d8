package paymentplan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// Plan amortizes a balance across a fixed number of dated installments.
// Installments are created once at plan setup; the daily sweep flips
// pending installments to overdue and payment application recomputes the
// plan status.
type Plan struct {
	ID         string  `db:"id" json:"id"`
	CustomerID string  `db:"customer_id" json:"customer_id"`
	InvoiceID  *string `db:"invoice_id" json:"invoice_id,omitempty"`

	Currency          string          `db:"currency" json:"currency"`
	TotalAmount       decimal.Decimal `db:"total_amount" json:"total_amount"`
	InstallmentCount  int             `db:"installment_count" json:"installment_count"`
	InstallmentAmount decimal.Decimal `db:"installment_amount" json:"installment_amount"`

	Frequency     types.BillingFrequency `db:"frequency" json:"frequency"`
	IntervalValue int                    `db:"interval_value" json:"interval_value"`
	StartDate     time.Time              `db:"start_date" json:"start_date"`

	PlanStatus types.PaymentPlanStatus `db:"plan_status" json:"plan_status"`

	EnvironmentID string `db:"environment_id" json:"environment_id"`

	types.BaseModel
}

// NewPlan builds an active plan with a monthly cadence by default
func NewPlan(ctx context.Context) *Plan {
	return &Plan{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_PLAN),
		Frequency:     types.BillingFrequencyMonthly,
		IntervalValue: 1,
		PlanStatus:    types.PaymentPlanStatusActive,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

func (p *Plan) Validate() error {
	if p.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("Payment plan must reference a customer").
			Mark(ierr.ErrValidation)
	}

	if !p.TotalAmount.IsPositive() {
		return ierr.NewError("total_amount must be positive").
			WithHint("Payment plan total must be greater than zero").
			Mark(ierr.ErrValidation)
	}

	if p.InstallmentCount < 1 {
		return ierr.NewError("installment_count must be at least 1").
			WithHint("Payment plan must have at least one installment").
			Mark(ierr.ErrValidation)
	}

	if p.IntervalValue < 1 {
		return ierr.NewError("interval_value must be at least 1").
			WithHint("Billing interval must be a positive integer").
			Mark(ierr.ErrValidation)
	}

	return p.Frequency.Validate()
}

// Installment is one due payment slice of an amortized plan
type Installment struct {
	ID                string `db:"id" json:"id"`
	PlanID            string `db:"plan_id" json:"plan_id"`
	InstallmentNumber int    `db:"installment_number" json:"installment_number"`

	DueDate    time.Time       `db:"due_date" json:"due_date"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	AmountPaid decimal.Decimal `db:"amount_paid" json:"amount_paid"`

	InstallmentStatus types.InstallmentStatus `db:"installment_status" json:"installment_status"`
	PaidAt            *time.Time              `db:"paid_at" json:"paid_at,omitempty"`

	EnvironmentID string `db:"environment_id" json:"environment_id"`

	types.BaseModel
}

// NewInstallment builds a pending installment for a plan
func NewInstallment(ctx context.Context, plan *Plan, number int, dueDate time.Time, amount decimal.Decimal) *Installment {
	return &Installment{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INSTALLMENT),
		PlanID:            plan.ID,
		InstallmentNumber: number,
		DueDate:           dueDate,
		Amount:            amount,
		AmountPaid:        decimal.Zero,
		InstallmentStatus: types.InstallmentStatusPending,
		EnvironmentID:     plan.EnvironmentID,
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
}

// Outstanding returns the unpaid remainder of the installment
func (i *Installment) Outstanding() decimal.Decimal {
	out := i.Amount.Sub(i.AmountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// DerivePlanStatus recomputes a plan's status from its installment set.
// A plan completes when every installment is either paid, or cancelled
// with the rest paid. Overdue installments leave the plan active;
// defaulting a plan is a manual decision.
func DerivePlanStatus(plan *Plan, installments []*Installment) types.PaymentPlanStatus {
	if plan.PlanStatus == types.PaymentPlanStatusCancelled ||
		plan.PlanStatus == types.PaymentPlanStatusDefaulted {
		return plan.PlanStatus
	}

	if len(installments) == 0 {
		return plan.PlanStatus
	}

	allSettled := true
	anyPaid := false
	for _, inst := range installments {
		switch inst.InstallmentStatus {
		case types.InstallmentStatusPaid:
			anyPaid = true
		case types.InstallmentStatusCancelled:
			// settled but does not count as progress
		default:
			allSettled = false
		}
	}

	if allSettled && anyPaid {
		return types.PaymentPlanStatusCompleted
	}
	return types.PaymentPlanStatusActive
}
