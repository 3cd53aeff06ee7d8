package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/testutil"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

type SchedulerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SchedulerService
}

func TestSchedulerService(t *testing.T) {
	suite.Run(t, new(SchedulerServiceSuite))
}

func (s *SchedulerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSchedulerService(ServiceParams{
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

func (s *SchedulerServiceSuite) newDefinition(id string, frequency types.BillingFrequency, nextDate time.Time) *recurring.Definition {
	def := &recurring.Definition{
		ID:                 id,
		CustomerID:         "cust_test",
		Currency:           "usd",
		Amount:             decimal.NewFromInt(100),
		Frequency:          frequency,
		IntervalValue:      1,
		StartDate:          nextDate,
		NextOccurrenceDate: nextDate,
		RecurringStatus:    types.RecurringStatusActive,
		EnvironmentID:      "env_sandbox",
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().RecurringRepo.Create(s.GetContext(), def))
	return def
}

func (s *SchedulerServiceSuite) TestGeneratesOccurrenceAndAdvancesCursor() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	def := s.newDefinition("rec_due", types.BillingFrequencyMonthly, yesterday)

	resp, err := s.service.ProcessDueDefinitions(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.TotalSuccess)
	s.Equal(0, resp.TotalFailed)
	s.Len(resp.Items, 1)
	s.True(resp.Items[0].Success)
	s.Equal(def.ID, resp.Items[0].DefinitionID)
	s.Equal(1, resp.Items[0].OccurrenceNumber)

	occurrences, err := s.GetStores().OccurrenceRepo.ListByDefinition(s.GetContext(), def.ID)
	s.NoError(err)
	s.Len(occurrences, 1)
	s.Equal(1, occurrences[0].OccurrenceNumber)
	s.True(yesterday.Equal(occurrences[0].ScheduledDate))
	s.Equal(types.OccurrenceStatusScheduled, occurrences[0].OccurrenceStatus)

	updated, err := s.GetStores().RecurringRepo.Get(s.GetContext(), def.ID)
	s.NoError(err)
	s.Equal(1, updated.OccurrencesGenerated)
	s.Equal(types.RecurringStatusActive, updated.RecurringStatus)
	// Anchored on the previous occurrence date, not on the run time
	s.True(types.AddClampedDate(yesterday, 0, 1, 0).Equal(updated.NextOccurrenceDate))
}

func (s *SchedulerServiceSuite) TestSecondRunIsNoOp() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	def := s.newDefinition("rec_once", types.BillingFrequencyMonthly, yesterday)

	resp, err := s.service.ProcessDueDefinitions(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.TotalSuccess)

	// The advanced definition no longer matches the due filter.
	resp, err = s.service.ProcessDueDefinitions(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.TotalSuccess)
	s.Equal(0, resp.TotalFailed)
	s.Empty(resp.Items)

	occurrences, err := s.GetStores().OccurrenceRepo.ListByDefinition(s.GetContext(), def.ID)
	s.NoError(err)
	s.Len(occurrences, 1)
}

func (s *SchedulerServiceSuite) TestCompletesAtMaxOccurrences() {
	start := s.GetNow().AddDate(0, 0, -5)
	def := s.newDefinition("rec_max", types.BillingFrequencyDaily, start)
	def.MaxOccurrences = lo.ToPtr(3)
	s.NoError(s.GetStores().RecurringRepo.Update(s.GetContext(), def))

	// Each run fires one occurrence per due definition; the definition
	// stays behind schedule until the third run completes it.
	for i := 1; i <= 3; i++ {
		resp, err := s.service.ProcessDueDefinitions(s.GetContext())
		s.NoError(err)
		s.Equal(1, resp.TotalSuccess, "run %d", i)
	}

	updated, err := s.GetStores().RecurringRepo.Get(s.GetContext(), def.ID)
	s.NoError(err)
	s.Equal(3, updated.OccurrencesGenerated)
	s.Equal(types.RecurringStatusCompleted, updated.RecurringStatus)

	count, err := s.GetStores().OccurrenceRepo.CountByDefinition(s.GetContext(), def.ID)
	s.NoError(err)
	s.Equal(3, count)

	// Completed definitions never fire again.
	resp, err := s.service.ProcessDueDefinitions(s.GetContext())
	s.NoError(err)
	s.Empty(resp.Items)
}

func (s *SchedulerServiceSuite) TestCompletesAtEndDate() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	def := s.newDefinition("rec_end", types.BillingFrequencyMonthly, yesterday)
	// The next computed date lands past the end date, so the first
	// occurrence is also the last.
	def.EndDate = lo.ToPtr(yesterday.AddDate(0, 0, 7))
	s.NoError(s.GetStores().RecurringRepo.Update(s.GetContext(), def))

	resp, err := s.service.ProcessDueDefinitions(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.TotalSuccess)
	s.True(resp.Items[0].Completed)

	updated, err := s.GetStores().RecurringRepo.Get(s.GetContext(), def.ID)
	s.NoError(err)
	s.Equal(types.RecurringStatusCompleted, updated.RecurringStatus)
}

func (s *SchedulerServiceSuite) TestSkipsPausedDefinitions() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	def := s.newDefinition("rec_paused", types.BillingFrequencyMonthly, yesterday)
	def.RecurringStatus = types.RecurringStatusPaused
	s.NoError(s.GetStores().RecurringRepo.Update(s.GetContext(), def))

	resp, err := s.service.ProcessDueDefinitions(s.GetContext())
	s.NoError(err)
	s.Empty(resp.Items)
}

func (s *SchedulerServiceSuite) TestFutureDefinitionsNotDue() {
	tomorrow := s.GetNow().AddDate(0, 0, 1)
	s.newDefinition("rec_future", types.BillingFrequencyMonthly, tomorrow)

	resp, err := s.service.ProcessDueDefinitions(s.GetContext())
	s.NoError(err)
	s.Empty(resp.Items)
}

func (s *SchedulerServiceSuite) TestOneFailureDoesNotBlockTheBatch() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	bad := s.newDefinition("rec_bad", types.BillingFrequencyMonthly, yesterday.Add(-time.Hour))
	good := s.newDefinition("rec_good", types.BillingFrequencyMonthly, yesterday)

	occStore := s.GetStores().OccurrenceRepo.(*testutil.InMemoryOccurrenceStore)
	occStore.FailCreateForDefinition(bad.ID, ierr.NewError("insert failed").
		WithHint("Simulated write failure").
		Mark(ierr.ErrDatabase))

	resp, err := s.service.ProcessDueDefinitions(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.TotalSuccess)
	s.Equal(1, resp.TotalFailed)
	s.Len(resp.Items, 2)

	// The failed definition keeps its cursor untouched and stays due.
	badDef, err := s.GetStores().RecurringRepo.Get(s.GetContext(), bad.ID)
	s.NoError(err)
	s.Equal(0, badDef.OccurrencesGenerated)
	s.True(yesterday.Add(-time.Hour).Equal(badDef.NextOccurrenceDate))
	s.Equal(types.RecurringStatusActive, badDef.RecurringStatus)

	goodDef, err := s.GetStores().RecurringRepo.Get(s.GetContext(), good.ID)
	s.NoError(err)
	s.Equal(1, goodDef.OccurrencesGenerated)
}

func (s *SchedulerServiceSuite) TestDuplicateOccurrenceRejected() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	def := s.newDefinition("rec_dup", types.BillingFrequencyMonthly, yesterday)

	// Simulate a crashed run that inserted the occurrence but never
	// advanced the cursor.
	stale := recurring.NewOccurrence(s.GetContext(), def)
	s.NoError(s.GetStores().OccurrenceRepo.Create(s.GetContext(), stale))

	resp, err := s.service.ProcessDueDefinitions(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.TotalSuccess)
	s.Equal(1, resp.TotalFailed)

	count, err := s.GetStores().OccurrenceRepo.CountByDefinition(s.GetContext(), def.ID)
	s.NoError(err)
	s.Equal(1, count)
}
