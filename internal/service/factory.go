package service

import (
	"github.com/ledgerflow/ledgerflow/internal/config"
	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	"github.com/ledgerflow/ledgerflow/internal/domain/payment"
	"github.com/ledgerflow/ledgerflow/internal/domain/paymentplan"
	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	RecurringRepo   recurring.Repository
	OccurrenceRepo  recurring.OccurrenceRepository
	InvoiceRepo     invoice.Repository
	PaymentRepo     payment.Repository
	PaymentPlanRepo paymentplan.Repository
	InstallmentRepo paymentplan.InstallmentRepository
}

func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	recurringRepo recurring.Repository,
	occurrenceRepo recurring.OccurrenceRepository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	paymentPlanRepo paymentplan.Repository,
	installmentRepo paymentplan.InstallmentRepository,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		DB:              db,
		RecurringRepo:   recurringRepo,
		OccurrenceRepo:  occurrenceRepo,
		InvoiceRepo:     invoiceRepo,
		PaymentRepo:     paymentRepo,
		PaymentPlanRepo: paymentPlanRepo,
		InstallmentRepo: installmentRepo,
	}
}
