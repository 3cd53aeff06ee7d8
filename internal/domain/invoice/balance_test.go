package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ledgerflow/ledgerflow/internal/domain/payment"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

func newTestInvoice(total float64, status types.InvoiceStatus) *Invoice {
	return &Invoice{
		ID:            "inv_1",
		TotalAmount:   decimal.NewFromFloat(total),
		InvoiceStatus: status,
	}
}

func newTestPayment(invoiceID string, amount float64, status types.PaymentStatus) *payment.Payment {
	return &payment.Payment{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:     invoiceID,
		Amount:        decimal.NewFromFloat(amount),
		PaymentStatus: status,
	}
}

func TestComputeBalance(t *testing.T) {
	now := time.Now().UTC()

	t.Run("no payments preserves status", func(t *testing.T) {
		inv := newTestInvoice(100, types.InvoiceStatusSent)
		result := ComputeBalance(inv, nil, now)

		assert.True(t, result.AmountPaid.IsZero())
		assert.True(t, decimal.NewFromInt(100).Equal(result.BalanceDue))
		assert.Equal(t, types.InvoiceStatusSent, result.Status)
		assert.Nil(t, result.PaidAt)
	})

	t.Run("partial payment", func(t *testing.T) {
		inv := newTestInvoice(100, types.InvoiceStatusSent)
		payments := []*payment.Payment{
			newTestPayment(inv.ID, 40, types.PaymentStatusSucceeded),
		}
		result := ComputeBalance(inv, payments, now)

		assert.True(t, decimal.NewFromInt(40).Equal(result.AmountPaid))
		assert.True(t, decimal.NewFromInt(60).Equal(result.BalanceDue))
		assert.Equal(t, types.InvoiceStatusPartial, result.Status)
		assert.Nil(t, result.PaidAt)
	})

	t.Run("full payment stamps paid at", func(t *testing.T) {
		inv := newTestInvoice(100, types.InvoiceStatusPartial)
		payments := []*payment.Payment{
			newTestPayment(inv.ID, 40, types.PaymentStatusSucceeded),
			newTestPayment(inv.ID, 60, types.PaymentStatusSucceeded),
		}
		result := ComputeBalance(inv, payments, now)

		assert.Equal(t, types.InvoiceStatusPaid, result.Status)
		assert.True(t, result.BalanceDue.IsZero())
		assert.NotNil(t, result.PaidAt)
		assert.True(t, now.Equal(*result.PaidAt))
	})

	t.Run("existing paid at is preserved", func(t *testing.T) {
		earlier := now.Add(-time.Hour)
		inv := newTestInvoice(100, types.InvoiceStatusPaid)
		inv.PaidAt = &earlier
		payments := []*payment.Payment{
			newTestPayment(inv.ID, 100, types.PaymentStatusSucceeded),
		}
		result := ComputeBalance(inv, payments, now)

		assert.True(t, earlier.Equal(*result.PaidAt))
	})

	t.Run("overpayment clamps balance to zero", func(t *testing.T) {
		inv := newTestInvoice(100, types.InvoiceStatusSent)
		payments := []*payment.Payment{
			newTestPayment(inv.ID, 150, types.PaymentStatusSucceeded),
		}
		result := ComputeBalance(inv, payments, now)

		assert.True(t, result.BalanceDue.IsZero())
		assert.Equal(t, types.InvoiceStatusPaid, result.Status)
	})

	t.Run("only succeeded payments count", func(t *testing.T) {
		inv := newTestInvoice(100, types.InvoiceStatusSent)
		payments := []*payment.Payment{
			newTestPayment(inv.ID, 40, types.PaymentStatusPending),
			newTestPayment(inv.ID, 40, types.PaymentStatusFailed),
			newTestPayment(inv.ID, 40, types.PaymentStatusRefunded),
			newTestPayment(inv.ID, 25, types.PaymentStatusSucceeded),
		}
		result := ComputeBalance(inv, payments, now)

		assert.True(t, decimal.NewFromInt(25).Equal(result.AmountPaid))
		assert.Equal(t, types.InvoiceStatusPartial, result.Status)
	})

	t.Run("payments for other invoices are ignored", func(t *testing.T) {
		inv := newTestInvoice(100, types.InvoiceStatusSent)
		payments := []*payment.Payment{
			newTestPayment("inv_other", 100, types.PaymentStatusSucceeded),
		}
		result := ComputeBalance(inv, payments, now)

		assert.True(t, result.AmountPaid.IsZero())
		assert.Equal(t, types.InvoiceStatusSent, result.Status)
	})

	t.Run("removing all payments reverts paid to sent", func(t *testing.T) {
		paidAt := now.Add(-time.Hour)
		inv := newTestInvoice(100, types.InvoiceStatusPaid)
		inv.PaidAt = &paidAt
		result := ComputeBalance(inv, nil, now)

		assert.Equal(t, types.InvoiceStatusSent, result.Status)
		assert.Nil(t, result.PaidAt)
	})

	t.Run("overdue survives recompute without payments", func(t *testing.T) {
		inv := newTestInvoice(100, types.InvoiceStatusOverdue)
		result := ComputeBalance(inv, nil, now)

		assert.Equal(t, types.InvoiceStatusOverdue, result.Status)
	})

	t.Run("zero total invoice never flips to paid", func(t *testing.T) {
		inv := newTestInvoice(0, types.InvoiceStatusSent)
		result := ComputeBalance(inv, nil, now)

		assert.Equal(t, types.InvoiceStatusSent, result.Status)
		assert.True(t, result.BalanceDue.IsZero())
	})
}
