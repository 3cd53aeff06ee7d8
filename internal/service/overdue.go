package service

import (
	"context"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	"github.com/ledgerflow/ledgerflow/internal/domain/paymentplan"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// OverdueService runs the daily sweeps that flip past-due invoices and
// payment-plan installments to overdue. Both sweeps batch across all
// tenants and treat each row independently, so one bad row never blocks
// the rest.
type OverdueService interface {
	ProcessOverdueInvoices(ctx context.Context) (*dto.SweepRunResponse, error)
	ProcessOverdueInstallments(ctx context.Context) (*dto.SweepRunResponse, error)
}

type overdueService struct {
	ServiceParams
}

func NewOverdueService(params ServiceParams) OverdueService {
	return &overdueService{
		ServiceParams: params,
	}
}

// ProcessOverdueInvoices marks sent, viewed and partial invoices with a
// due date in the past and a positive balance as overdue, stamping the
// time the sweep noticed. Paid and zero-balance invoices never qualify;
// the candidate query enforces that, and the row check enforces it again
// in case the balance changed between the query and the write.
func (s *overdueService) ProcessOverdueInvoices(ctx context.Context) (*dto.SweepRunResponse, error) {
	now := time.Now().UTC()
	response := &dto.SweepRunResponse{StartAt: now}

	batchSize := s.Config.Scheduler.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSchedulerBatchSize
	}

	// Flipped rows stop matching the candidate filter; the offset only
	// skips rows that failed earlier in this run.
	offset := 0
	for {
		invoices, err := s.InvoiceRepo.ListOverdueCandidates(ctx, now, batchSize, offset)
		if err != nil {
			s.Logger.Errorw("failed to list overdue invoice candidates",
				"error", err,
				"as_of", now,
			)
			return nil, err
		}
		if len(invoices) == 0 {
			break
		}

		for _, inv := range invoices {
			if err := s.markInvoiceOverdue(ctx, inv, now); err != nil {
				s.Logger.Errorw("failed to mark invoice overdue",
					"invoice_id", inv.ID,
					"tenant_id", inv.TenantID,
					"error", err,
				)
				response.TotalFailed++
				offset++
				continue
			}
			response.TotalProcessed++
		}

		if len(invoices) < batchSize {
			break
		}
	}

	s.Logger.Infow("completed overdue invoice sweep",
		"total_processed", response.TotalProcessed,
		"total_failed", response.TotalFailed,
		"start_at", response.StartAt,
	)

	return response, nil
}

func (s *overdueService) markInvoiceOverdue(ctx context.Context, inv *invoice.Invoice, now time.Time) error {
	if !inv.InvoiceStatus.EligibleForOverdue() || !inv.BalanceDue.IsPositive() {
		return nil
	}

	invCtx := types.SetTenantID(ctx, inv.TenantID)
	invCtx = types.SetEnvironmentID(invCtx, inv.EnvironmentID)
	invCtx = types.SetUserID(invCtx, types.DefaultUserID)

	inv.InvoiceStatus = types.InvoiceStatusOverdue
	inv.OverdueDate = &now
	return s.InvoiceRepo.Update(invCtx, inv)
}

// ProcessOverdueInstallments flips pending installments with a due date
// in the past to overdue. Overdue installments leave their plan active;
// defaulting a plan stays a manual decision.
func (s *overdueService) ProcessOverdueInstallments(ctx context.Context) (*dto.SweepRunResponse, error) {
	now := time.Now().UTC()
	response := &dto.SweepRunResponse{StartAt: now}

	batchSize := s.Config.Scheduler.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSchedulerBatchSize
	}

	offset := 0
	for {
		installments, err := s.InstallmentRepo.ListOverdueCandidates(ctx, now, batchSize, offset)
		if err != nil {
			s.Logger.Errorw("failed to list overdue installment candidates",
				"error", err,
				"as_of", now,
			)
			return nil, err
		}
		if len(installments) == 0 {
			break
		}

		for _, inst := range installments {
			if err := s.markInstallmentOverdue(ctx, inst); err != nil {
				s.Logger.Errorw("failed to mark installment overdue",
					"installment_id", inst.ID,
					"plan_id", inst.PlanID,
					"error", err,
				)
				response.TotalFailed++
				offset++
				continue
			}
			response.TotalProcessed++
		}

		if len(installments) < batchSize {
			break
		}
	}

	s.Logger.Infow("completed overdue installment sweep",
		"total_processed", response.TotalProcessed,
		"total_failed", response.TotalFailed,
		"start_at", response.StartAt,
	)

	return response, nil
}

func (s *overdueService) markInstallmentOverdue(ctx context.Context, inst *paymentplan.Installment) error {
	if inst.InstallmentStatus != types.InstallmentStatusPending {
		return nil
	}

	instCtx := types.SetTenantID(ctx, inst.TenantID)
	instCtx = types.SetEnvironmentID(instCtx, inst.EnvironmentID)
	instCtx = types.SetUserID(instCtx, types.DefaultUserID)

	inst.InstallmentStatus = types.InstallmentStatusOverdue
	return s.InstallmentRepo.Update(instCtx, inst)
}
