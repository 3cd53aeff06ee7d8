package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	"github.com/ledgerflow/ledgerflow/internal/testutil"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

type OverdueServiceSuite struct {
	testutil.BaseServiceTestSuite
	service OverdueService
}

func TestOverdueService(t *testing.T) {
	suite.Run(t, new(OverdueServiceSuite))
}

func (s *OverdueServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewOverdueService(ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		RecurringRepo:   s.GetStores().RecurringRepo,
		OccurrenceRepo:  s.GetStores().OccurrenceRepo,
		InvoiceRepo:     s.GetStores().InvoiceRepo,
		PaymentRepo:     s.GetStores().PaymentRepo,
		PaymentPlanRepo: s.GetStores().PaymentPlanRepo,
		InstallmentRepo: s.GetStores().InstallmentRepo,
	})
}

func (s *OverdueServiceSuite) newInvoice(id string, status types.InvoiceStatus, dueDate *time.Time, balance float64) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:            id,
		CustomerID:    "cust_test",
		Currency:      "usd",
		TotalAmount:   decimal.NewFromFloat(balance),
		AmountPaid:    decimal.Zero,
		BalanceDue:    decimal.NewFromFloat(balance),
		InvoiceStatus: status,
		IssueDate:     s.GetNow().AddDate(0, 0, -30),
		DueDate:       dueDate,
		EnvironmentID: "env_sandbox",
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}

func (s *OverdueServiceSuite) TestMarksPastDueInvoiceOverdue() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	inv := s.newInvoice("inv_past_due", types.InvoiceStatusSent, &yesterday, 50.00)

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.TotalProcessed)
	s.Equal(0, resp.TotalFailed)

	updated, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, updated.InvoiceStatus)
	s.NotNil(updated.OverdueDate)
	// The stamp records when the sweep noticed, not the due date.
	s.False(updated.OverdueDate.Before(resp.StartAt))
}

func (s *OverdueServiceSuite) TestPartialInvoicesQualify() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	inv := s.newInvoice("inv_partial", types.InvoiceStatusPartial, &yesterday, 100.00)
	inv.AmountPaid = decimal.NewFromFloat(40.00)
	inv.BalanceDue = decimal.NewFromFloat(60.00)
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.TotalProcessed)

	updated, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, updated.InvoiceStatus)
}

func (s *OverdueServiceSuite) TestSkipsIneligibleInvoices() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	tomorrow := s.GetNow().AddDate(0, 0, 1)

	// Paid, draft and cancelled never flip, nor do invoices that are not
	// yet due or carry no balance.
	paid := s.newInvoice("inv_paid", types.InvoiceStatusPaid, &yesterday, 50.00)
	draft := s.newInvoice("inv_draft", types.InvoiceStatusDraft, &yesterday, 50.00)
	cancelled := s.newInvoice("inv_cancelled", types.InvoiceStatusCancelled, &yesterday, 50.00)
	future := s.newInvoice("inv_future", types.InvoiceStatusSent, &tomorrow, 50.00)
	noDueDate := s.newInvoice("inv_no_due", types.InvoiceStatusSent, nil, 50.00)

	zeroBalance := s.newInvoice("inv_zero", types.InvoiceStatusSent, &yesterday, 100.00)
	zeroBalance.AmountPaid = decimal.NewFromFloat(100.00)
	zeroBalance.BalanceDue = decimal.Zero
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), zeroBalance))

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.TotalProcessed)

	for _, inv := range []*invoice.Invoice{paid, draft, cancelled, future, noDueDate, zeroBalance} {
		got, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
		s.NoError(err)
		s.NotEqual(types.InvoiceStatusOverdue, got.InvoiceStatus, "invoice %s", inv.ID)
		s.Nil(got.OverdueDate)
	}
}

func (s *OverdueServiceSuite) TestSweepIsIdempotent() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	inv := s.newInvoice("inv_idem", types.InvoiceStatusSent, &yesterday, 50.00)

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.TotalProcessed)

	first, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	firstStamp := *first.OverdueDate

	// Overdue invoices no longer match the candidate filter, so the
	// stamp survives a second sweep.
	resp, err = s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.TotalProcessed)

	second, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.True(firstStamp.Equal(*second.OverdueDate))
}
