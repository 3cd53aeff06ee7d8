package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ledgerflow/ledgerflow/internal/config"
	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	"github.com/ledgerflow/ledgerflow/internal/domain/payment"
	"github.com/ledgerflow/ledgerflow/internal/domain/paymentplan"
	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/postgres"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	RecurringRepo   recurring.Repository
	OccurrenceRepo  recurring.OccurrenceRepository
	InvoiceRepo     invoice.Repository
	PaymentRepo     payment.Repository
	PaymentPlanRepo paymentplan.Repository
	InstallmentRepo paymentplan.InstallmentRepository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     postgres.IClient
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	installmentStore := NewInMemoryInstallmentStore()
	s.stores = Stores{
		RecurringRepo:   NewInMemoryRecurringStore(),
		OccurrenceRepo:  NewInMemoryOccurrenceStore(),
		InvoiceRepo:     NewInMemoryInvoiceStore(),
		PaymentRepo:     NewInMemoryPaymentStore(),
		PaymentPlanRepo: NewInMemoryPaymentPlanStore(installmentStore),
		InstallmentRepo: installmentStore,
	}

	s.db = NewMockPostgresClient(s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.RecurringRepo.(*InMemoryRecurringStore).Clear()
	s.stores.OccurrenceRepo.(*InMemoryOccurrenceStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.PaymentPlanRepo.(*InMemoryPaymentPlanStore).Clear()
	s.stores.InstallmentRepo.(*InMemoryInstallmentStore).Clear()
}

// ClearStores resets all repositories mid-test
func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
