package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/testutil"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

type RecurringServiceSuite struct {
	testutil.BaseServiceTestSuite
	service RecurringService
}

func TestRecurringService(t *testing.T) {
	suite.Run(t, new(RecurringServiceSuite))
}

func (s *RecurringServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewRecurringService(ServiceParams{
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

func (s *RecurringServiceSuite) createRecurring() *dto.RecurringResponse {
	resp, err := s.service.CreateRecurring(s.GetContext(), &dto.CreateRecurringRequest{
		CustomerID: "cust_test",
		Currency:   "usd",
		Amount:     decimal.NewFromFloat(49.99),
		Frequency:  types.BillingFrequencyMonthly,
		StartDate:  s.GetNow().AddDate(0, 0, 1),
	})
	s.NoError(err)
	return resp
}

func (s *RecurringServiceSuite) TestCreateRecurring() {
	resp := s.createRecurring()

	s.NotEmpty(resp.ID)
	s.Equal(types.RecurringStatusActive, resp.RecurringStatus)
	s.Equal(0, resp.OccurrencesGenerated)
	// The first occurrence fires on the start date.
	s.True(resp.StartDate.Equal(resp.NextOccurrenceDate))
	s.Equal(1, resp.IntervalValue)
}

func (s *RecurringServiceSuite) TestCreateRecurringRejectsUnknownFrequency() {
	_, err := s.service.CreateRecurring(s.GetContext(), &dto.CreateRecurringRequest{
		CustomerID: "cust_test",
		Currency:   "usd",
		Amount:     decimal.NewFromFloat(49.99),
		Frequency:  types.BillingFrequency("fortnightly"),
		StartDate:  s.GetNow(),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *RecurringServiceSuite) TestCreateRecurringRejectsEndBeforeStart() {
	start := s.GetNow().AddDate(0, 0, 1)
	_, err := s.service.CreateRecurring(s.GetContext(), &dto.CreateRecurringRequest{
		CustomerID: "cust_test",
		Currency:   "usd",
		Amount:     decimal.NewFromFloat(49.99),
		Frequency:  types.BillingFrequencyMonthly,
		StartDate:  start,
		EndDate:    lo.ToPtr(start.AddDate(0, 0, -7)),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *RecurringServiceSuite) TestPauseResumeLifecycle() {
	created := s.createRecurring()

	paused, err := s.service.PauseRecurring(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.RecurringStatusPaused, paused.RecurringStatus)

	// Pausing twice is an invalid transition.
	_, err = s.service.PauseRecurring(s.GetContext(), created.ID)
	s.Error(err)

	resumed, err := s.service.ResumeRecurring(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.RecurringStatusActive, resumed.RecurringStatus)
}

func (s *RecurringServiceSuite) TestCancelIsTerminal() {
	created := s.createRecurring()

	cancelled, err := s.service.CancelRecurring(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.RecurringStatusCancelled, cancelled.RecurringStatus)

	_, err = s.service.CancelRecurring(s.GetContext(), created.ID)
	s.Error(err)
	_, err = s.service.ResumeRecurring(s.GetContext(), created.ID)
	s.Error(err)
}

func (s *RecurringServiceSuite) TestListRecurringFiltersByStatus() {
	active := s.createRecurring()
	other := s.createRecurring()
	_, err := s.service.CancelRecurring(s.GetContext(), other.ID)
	s.NoError(err)

	resp, err := s.service.ListRecurring(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)

	resp, err = s.service.ListRecurring(s.GetContext(), &recurring.DefinitionFilter{
		QueryFilter:       types.NewDefaultQueryFilter(),
		RecurringStatuses: []types.RecurringStatus{types.RecurringStatusActive},
	})
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal(active.ID, resp.Items[0].ID)
}

func (s *RecurringServiceSuite) TestGetRecurringNotFound() {
	_, err := s.service.GetRecurring(s.GetContext(), "rec_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
