package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/testutil"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service        PaymentService
	invoiceService InvoiceService
	testData       struct {
		invoice *invoice.Invoice
	}
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		RecurringRepo:   s.GetStores().RecurringRepo,
		OccurrenceRepo:  s.GetStores().OccurrenceRepo,
		InvoiceRepo:     s.GetStores().InvoiceRepo,
		PaymentRepo:     s.GetStores().PaymentRepo,
		PaymentPlanRepo: s.GetStores().PaymentPlanRepo,
		InstallmentRepo: s.GetStores().InstallmentRepo,
	}
	s.service = NewPaymentService(params)
	s.invoiceService = NewInvoiceService(params)

	s.setupTestData()
}

func (s *PaymentServiceSuite) setupTestData() {
	dueDate := s.GetNow().AddDate(0, 0, 14)
	s.testData.invoice = &invoice.Invoice{
		ID:            "inv_test_payment",
		CustomerID:    "cust_test",
		Currency:      "usd",
		TotalAmount:   decimal.NewFromFloat(100.00),
		AmountPaid:    decimal.Zero,
		BalanceDue:    decimal.NewFromFloat(100.00),
		InvoiceStatus: types.InvoiceStatusSent,
		IssueDate:     s.GetNow(),
		DueDate:       &dueDate,
		EnvironmentID: "env_sandbox",
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), s.testData.invoice))
}

func (s *PaymentServiceSuite) recordPayment(amount float64, key string) *dto.PaymentResponse {
	resp, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
		IdempotencyKey:    key,
		InvoiceID:         s.testData.invoice.ID,
		Amount:            decimal.NewFromFloat(amount),
		Currency:          "usd",
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.NoError(err)
	return resp
}

func (s *PaymentServiceSuite) getInvoice() *invoice.Invoice {
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	return inv
}

func (s *PaymentServiceSuite) TestPartialThenFullPayment() {
	s.recordPayment(40.00, "key-1")

	inv := s.getInvoice()
	s.True(decimal.NewFromFloat(40.00).Equal(inv.AmountPaid))
	s.True(decimal.NewFromFloat(60.00).Equal(inv.BalanceDue))
	s.Equal(types.InvoiceStatusPartial, inv.InvoiceStatus)
	s.Nil(inv.PaidAt)

	s.recordPayment(60.00, "key-2")

	inv = s.getInvoice()
	s.True(decimal.NewFromFloat(100.00).Equal(inv.AmountPaid))
	s.True(inv.BalanceDue.IsZero())
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.NotNil(inv.PaidAt)
}

func (s *PaymentServiceSuite) TestOverpaymentClampsBalance() {
	s.recordPayment(150.00, "key-over")

	inv := s.getInvoice()
	s.True(decimal.NewFromFloat(150.00).Equal(inv.AmountPaid))
	s.True(inv.BalanceDue.IsZero())
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
}

func (s *PaymentServiceSuite) TestIdempotencyKeyReplay() {
	first := s.recordPayment(40.00, "gateway-evt-1")
	second := s.recordPayment(40.00, "gateway-evt-1")

	s.Equal(first.ID, second.ID)

	// The replay must not double-apply the amount.
	inv := s.getInvoice()
	s.True(decimal.NewFromFloat(40.00).Equal(inv.AmountPaid))

	payments, err := s.GetStores().PaymentRepo.ListByInvoice(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Len(payments, 1)
}

func (s *PaymentServiceSuite) TestDeletePaymentRevertsStatus() {
	resp := s.recordPayment(100.00, "key-del")
	s.Equal(types.InvoiceStatusPaid, s.getInvoice().InvoiceStatus)

	s.NoError(s.service.DeletePayment(s.GetContext(), resp.ID))

	inv := s.getInvoice()
	s.True(inv.AmountPaid.IsZero())
	s.True(decimal.NewFromFloat(100.00).Equal(inv.BalanceDue))
	s.Equal(types.InvoiceStatusSent, inv.InvoiceStatus)
	s.Nil(inv.PaidAt)
}

func (s *PaymentServiceSuite) TestRefundPaymentRevertsStatus() {
	resp := s.recordPayment(100.00, "key-refund")
	s.Equal(types.InvoiceStatusPaid, s.getInvoice().InvoiceStatus)

	refunded, err := s.service.RefundPayment(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusRefunded, refunded.PaymentStatus)
	s.NotNil(refunded.RefundedAt)

	// Refunded payments no longer count toward the balance.
	inv := s.getInvoice()
	s.True(inv.AmountPaid.IsZero())
	s.Equal(types.InvoiceStatusSent, inv.InvoiceStatus)
}

func (s *PaymentServiceSuite) TestRejectsNonPositiveAmount() {
	_, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
		InvoiceID:         s.testData.invoice.ID,
		Amount:            decimal.Zero,
		Currency:          "usd",
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestRejectsCancelledInvoice() {
	s.testData.invoice.InvoiceStatus = types.InvoiceStatusCancelled
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), s.testData.invoice))

	_, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
		InvoiceID:         s.testData.invoice.ID,
		Amount:            decimal.NewFromFloat(10.00),
		Currency:          "usd",
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.Error(err)
}

func (s *PaymentServiceSuite) TestRecalculatePreservesOverdueWithoutPayments() {
	overdueAt := s.GetNow().Add(-time.Hour)
	s.testData.invoice.InvoiceStatus = types.InvoiceStatusOverdue
	s.testData.invoice.OverdueDate = &overdueAt
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), s.testData.invoice))

	// Recomputing with no payment rows must not touch a non-payment
	// status like overdue.
	resp, err := s.invoiceService.RecalculateBalance(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, resp.InvoiceStatus)
	s.True(resp.AmountPaid.IsZero())
}
