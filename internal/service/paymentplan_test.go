package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/testutil"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

type PaymentPlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PaymentPlanService
	overdue OverdueService
}

func TestPaymentPlanService(t *testing.T) {
	suite.Run(t, new(PaymentPlanServiceSuite))
}

func (s *PaymentPlanServiceSuite) SetupTest() {
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
	s.service = NewPaymentPlanService(params)
	s.overdue = NewOverdueService(params)
}

func (s *PaymentPlanServiceSuite) createPlan(total float64, count int) *dto.PaymentPlanResponse {
	resp, err := s.service.CreatePlan(s.GetContext(), &dto.CreatePaymentPlanRequest{
		CustomerID:       "cust_test",
		Currency:         "usd",
		TotalAmount:      decimal.NewFromFloat(total),
		InstallmentCount: count,
		Frequency:        types.BillingFrequencyMonthly,
		StartDate:        s.GetNow().AddDate(0, 0, 7),
	})
	s.NoError(err)
	return resp
}

func (s *PaymentPlanServiceSuite) TestCreatePlanBuildsSchedule() {
	resp := s.createPlan(100.00, 3)

	s.Len(resp.Installments, 3)
	s.Equal(types.PaymentPlanStatusActive, resp.PlanStatus)

	// Equal split with the last installment absorbing the remainder,
	// so the schedule always sums back to the total.
	s.True(decimal.NewFromFloat(33.33).Equal(resp.Installments[0].Amount))
	s.True(decimal.NewFromFloat(33.33).Equal(resp.Installments[1].Amount))
	s.True(decimal.NewFromFloat(33.34).Equal(resp.Installments[2].Amount))

	sum := decimal.Zero
	for _, inst := range resp.Installments {
		sum = sum.Add(inst.Amount)
		s.Equal(types.InstallmentStatusPending, inst.InstallmentStatus)
	}
	s.True(resp.TotalAmount.Equal(sum))

	// Due dates follow the clamped monthly cadence from the start date.
	start := resp.StartDate
	s.True(start.Equal(resp.Installments[0].DueDate))
	s.True(types.AddClampedDate(start, 0, 1, 0).Equal(resp.Installments[1].DueDate))
	s.True(types.AddClampedDate(start, 0, 2, 0).Equal(resp.Installments[2].DueDate))
}

func (s *PaymentPlanServiceSuite) TestApplyPaymentsCompletesPlan() {
	plan := s.createPlan(90.00, 3)

	for n := 1; n <= 3; n++ {
		resp, err := s.service.ApplyInstallmentPayment(s.GetContext(), plan.ID, n, &dto.ApplyInstallmentPaymentRequest{
			Amount: decimal.NewFromFloat(30.00),
		})
		s.NoError(err)
		s.Equal(types.InstallmentStatusPaid, resp.Installments[n-1].InstallmentStatus)
		s.NotNil(resp.Installments[n-1].PaidAt)

		if n < 3 {
			s.Equal(types.PaymentPlanStatusActive, resp.PlanStatus)
		} else {
			s.Equal(types.PaymentPlanStatusCompleted, resp.PlanStatus)
		}
	}
}

func (s *PaymentPlanServiceSuite) TestPartialInstallmentPaymentStaysPending() {
	plan := s.createPlan(90.00, 3)

	resp, err := s.service.ApplyInstallmentPayment(s.GetContext(), plan.ID, 1, &dto.ApplyInstallmentPaymentRequest{
		Amount: decimal.NewFromFloat(10.00),
	})
	s.NoError(err)

	inst := resp.Installments[0]
	s.Equal(types.InstallmentStatusPending, inst.InstallmentStatus)
	s.True(decimal.NewFromFloat(10.00).Equal(inst.AmountPaid))
	s.True(decimal.NewFromFloat(20.00).Equal(inst.Outstanding()))
	s.Nil(inst.PaidAt)
}

func (s *PaymentPlanServiceSuite) TestCannotPaySettledInstallment() {
	plan := s.createPlan(90.00, 3)

	_, err := s.service.ApplyInstallmentPayment(s.GetContext(), plan.ID, 1, &dto.ApplyInstallmentPaymentRequest{
		Amount: decimal.NewFromFloat(30.00),
	})
	s.NoError(err)

	_, err = s.service.ApplyInstallmentPayment(s.GetContext(), plan.ID, 1, &dto.ApplyInstallmentPaymentRequest{
		Amount: decimal.NewFromFloat(30.00),
	})
	s.Error(err)
}

func (s *PaymentPlanServiceSuite) TestOverdueSweepFlipsPendingInstallments() {
	resp, err := s.service.CreatePlan(s.GetContext(), &dto.CreatePaymentPlanRequest{
		CustomerID:       "cust_test",
		Currency:         "usd",
		TotalAmount:      decimal.NewFromFloat(60.00),
		InstallmentCount: 2,
		Frequency:        types.BillingFrequencyMonthly,
		StartDate:        s.GetNow().AddDate(0, -1, -1),
	})
	s.NoError(err)

	sweep, err := s.overdue.ProcessOverdueInstallments(s.GetContext())
	s.NoError(err)
	s.Equal(2, sweep.TotalProcessed)

	plan, err := s.service.GetPlan(s.GetContext(), resp.ID)
	s.NoError(err)
	for _, inst := range plan.Installments {
		s.Equal(types.InstallmentStatusOverdue, inst.InstallmentStatus)
	}
	// Overdue installments leave the plan active.
	s.Equal(types.PaymentPlanStatusActive, plan.PlanStatus)
}

func (s *PaymentPlanServiceSuite) TestOverdueInstallmentStillPayable() {
	resp, err := s.service.CreatePlan(s.GetContext(), &dto.CreatePaymentPlanRequest{
		CustomerID:       "cust_test",
		Currency:         "usd",
		TotalAmount:      decimal.NewFromFloat(30.00),
		InstallmentCount: 1,
		Frequency:        types.BillingFrequencyMonthly,
		StartDate:        s.GetNow().AddDate(0, 0, -2),
	})
	s.NoError(err)

	_, err = s.overdue.ProcessOverdueInstallments(s.GetContext())
	s.NoError(err)

	paid, err := s.service.ApplyInstallmentPayment(s.GetContext(), resp.ID, 1, &dto.ApplyInstallmentPaymentRequest{
		Amount: decimal.NewFromFloat(30.00),
	})
	s.NoError(err)
	s.Equal(types.InstallmentStatusPaid, paid.Installments[0].InstallmentStatus)
	s.Equal(types.PaymentPlanStatusCompleted, paid.PlanStatus)
}

func (s *PaymentPlanServiceSuite) TestCancelPlan() {
	plan := s.createPlan(90.00, 3)

	_, err := s.service.ApplyInstallmentPayment(s.GetContext(), plan.ID, 1, &dto.ApplyInstallmentPaymentRequest{
		Amount: decimal.NewFromFloat(30.00),
	})
	s.NoError(err)

	cancelled, err := s.service.CancelPlan(s.GetContext(), plan.ID)
	s.NoError(err)
	s.Equal(types.PaymentPlanStatusCancelled, cancelled.PlanStatus)

	// Paid installments keep their history; the rest are cancelled.
	s.Equal(types.InstallmentStatusPaid, cancelled.Installments[0].InstallmentStatus)
	s.Equal(types.InstallmentStatusCancelled, cancelled.Installments[1].InstallmentStatus)
	s.Equal(types.InstallmentStatusCancelled, cancelled.Installments[2].InstallmentStatus)

	// A cancelled plan accepts no more payments.
	_, err = s.service.ApplyInstallmentPayment(s.GetContext(), plan.ID, 2, &dto.ApplyInstallmentPaymentRequest{
		Amount: decimal.NewFromFloat(30.00),
	})
	s.Error(err)
}

func (s *PaymentPlanServiceSuite) TestRejectsInvalidRequests() {
	_, err := s.service.CreatePlan(s.GetContext(), &dto.CreatePaymentPlanRequest{
		CustomerID:       "cust_test",
		Currency:         "usd",
		TotalAmount:      decimal.Zero,
		InstallmentCount: 3,
		StartDate:        s.GetNow(),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreatePlan(s.GetContext(), &dto.CreatePaymentPlanRequest{
		CustomerID:       "cust_test",
		Currency:         "usd",
		TotalAmount:      decimal.NewFromFloat(100.00),
		InstallmentCount: 0,
		StartDate:        s.GetNow(),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
