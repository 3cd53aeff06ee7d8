package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerflow/ledgerflow/internal/domain/payment"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// BalanceResult is the derived payment summary of an invoice
type BalanceResult struct {
	AmountPaid decimal.Decimal
	BalanceDue decimal.Decimal
	Status     types.InvoiceStatus
	PaidAt     *time.Time
}

// ComputeBalance derives amount_paid, balance_due and the payment-driven
// status purely from the current set of payment rows. Only succeeded
// payments count. The status rules:
//   - paid when cumulative payments >= total amount
//   - partial when 0 < cumulative payments < total amount
//   - otherwise the invoice's current status is preserved, so draft,
//     sent, viewed and overdue survive the removal of all payments.
//
// The function is idempotent and holds no state, so it can be re-run
// against the same rows at any time (and called directly in tests).
func ComputeBalance(inv *Invoice, payments []*payment.Payment, now time.Time) BalanceResult {
	amountPaid := decimal.Zero
	for _, p := range payments {
		if p == nil || p.InvoiceID != inv.ID {
			continue
		}
		if p.PaymentStatus != types.PaymentStatusSucceeded {
			continue
		}
		amountPaid = amountPaid.Add(p.Amount)
	}

	balanceDue := inv.TotalAmount.Sub(amountPaid)
	if balanceDue.IsNegative() {
		balanceDue = decimal.Zero
	}

	result := BalanceResult{
		AmountPaid: amountPaid,
		BalanceDue: balanceDue,
		Status:     inv.InvoiceStatus,
		PaidAt:     inv.PaidAt,
	}

	switch {
	case amountPaid.GreaterThanOrEqual(inv.TotalAmount) && inv.TotalAmount.IsPositive():
		result.Status = types.InvoiceStatusPaid
		if result.PaidAt == nil {
			result.PaidAt = &now
		}
	case amountPaid.IsPositive():
		result.Status = types.InvoiceStatusPartial
		result.PaidAt = nil
	default:
		// No payments: revert a payment-derived status back to sent,
		// otherwise leave the status untouched.
		if inv.InvoiceStatus == types.InvoiceStatusPaid || inv.InvoiceStatus == types.InvoiceStatusPartial {
			result.Status = types.InvoiceStatusSent
		}
		result.PaidAt = nil
	}

	return result
}

// Apply writes a computed balance back onto the invoice
func (i *Invoice) Apply(r BalanceResult) {
	i.AmountPaid = r.AmountPaid
	i.BalanceDue = r.BalanceDue
	i.InvoiceStatus = r.Status
	i.PaidAt = r.PaidAt
}
