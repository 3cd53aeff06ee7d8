package repository

import (
	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	"github.com/ledgerflow/ledgerflow/internal/domain/payment"
	"github.com/ledgerflow/ledgerflow/internal/domain/paymentplan"
	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/postgres"
	postgresRepo "github.com/ledgerflow/ledgerflow/internal/repository/postgres"
)

func NewRecurringRepository(db *postgres.DB, logger *logger.Logger) recurring.Repository {
	return postgresRepo.NewRecurringRepository(db, logger)
}

func NewOccurrenceRepository(db *postgres.DB, logger *logger.Logger) recurring.OccurrenceRepository {
	return postgresRepo.NewOccurrenceRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewPaymentPlanRepository(db *postgres.DB, logger *logger.Logger) paymentplan.Repository {
	return postgresRepo.NewPaymentPlanRepository(db, logger)
}

func NewInstallmentRepository(db *postgres.DB, logger *logger.Logger) paymentplan.InstallmentRepository {
	return postgresRepo.NewInstallmentRepository(db, logger)
}
