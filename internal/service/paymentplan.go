package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	"github.com/ledgerflow/ledgerflow/internal/domain/paymentplan"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// PaymentPlanService manages amortized payment plans. The installment
// schedule is materialized once at plan creation; applying payments and
// the overdue sweep move individual installments through their states,
// and the plan status is always re-derived from the installment set.
type PaymentPlanService interface {
	CreatePlan(ctx context.Context, req *dto.CreatePaymentPlanRequest) (*dto.PaymentPlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PaymentPlanResponse, error)
	ListPlansByCustomer(ctx context.Context, customerID string) ([]*dto.PaymentPlanResponse, error)
	ApplyInstallmentPayment(ctx context.Context, planID string, number int, req *dto.ApplyInstallmentPaymentRequest) (*dto.PaymentPlanResponse, error)
	CancelPlan(ctx context.Context, id string) (*dto.PaymentPlanResponse, error)
}

type paymentPlanService struct {
	ServiceParams
}

func NewPaymentPlanService(params ServiceParams) PaymentPlanService {
	return &paymentPlanService{
		ServiceParams: params,
	}
}

// CreatePlan splits the total into equal installments, with the last
// installment absorbing the rounding remainder so the schedule always
// sums back to the total. Due dates follow the same clamped calendar
// math as recurring billing, anchored on the start date.
func (s *paymentPlanService) CreatePlan(ctx context.Context, req *dto.CreatePaymentPlanRequest) (*dto.PaymentPlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan := req.ToPlan(ctx)

	count := int64(plan.InstallmentCount)
	base := plan.TotalAmount.DivRound(decimal.NewFromInt(count), 2)
	last := plan.TotalAmount.Sub(base.Mul(decimal.NewFromInt(count - 1)))
	plan.InstallmentAmount = base

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	installments := make([]*paymentplan.Installment, 0, plan.InstallmentCount)
	dueDate := plan.StartDate
	for n := 1; n <= plan.InstallmentCount; n++ {
		amount := base
		if n == plan.InstallmentCount {
			amount = last
		}
		installments = append(installments, paymentplan.NewInstallment(ctx, plan, n, dueDate, amount))

		next, err := types.NextOccurrenceDate(dueDate, plan.IntervalValue, plan.Frequency)
		if err != nil {
			return nil, err
		}
		dueDate = next
	}

	if err := s.PaymentPlanRepo.CreateWithInstallments(ctx, plan, installments); err != nil {
		return nil, err
	}

	s.Logger.Infow("created payment plan",
		"plan_id", plan.ID,
		"customer_id", plan.CustomerID,
		"total_amount", plan.TotalAmount,
		"installment_count", plan.InstallmentCount,
	)

	return &dto.PaymentPlanResponse{Plan: plan, Installments: installments}, nil
}

func (s *paymentPlanService) GetPlan(ctx context.Context, id string) (*dto.PaymentPlanResponse, error) {
	plan, err := s.PaymentPlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	installments, err := s.InstallmentRepo.ListByPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.PaymentPlanResponse{Plan: plan, Installments: installments}, nil
}

func (s *paymentPlanService) ListPlansByCustomer(ctx context.Context, customerID string) ([]*dto.PaymentPlanResponse, error) {
	plans, err := s.PaymentPlanRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PaymentPlanResponse, 0, len(plans))
	for _, plan := range plans {
		responses = append(responses, &dto.PaymentPlanResponse{Plan: plan})
	}
	return responses, nil
}

// ApplyInstallmentPayment applies an amount to one installment and
// re-derives the plan status in the same transaction.
func (s *paymentPlanService) ApplyInstallmentPayment(ctx context.Context, planID string, number int, req *dto.ApplyInstallmentPaymentRequest) (*dto.PaymentPlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.PaymentPlanRepo.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	if plan.PlanStatus != types.PaymentPlanStatusActive {
		return nil, ierr.NewError("payments can only be applied to active plans").
			WithHint("The payment plan is not active").
			WithReportableDetails(map[string]any{
				"plan_id": planID,
				"status":  plan.PlanStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	inst, err := s.InstallmentRepo.GetByPlanAndNumber(ctx, planID, number)
	if err != nil {
		return nil, err
	}

	if inst.InstallmentStatus == types.InstallmentStatusPaid ||
		inst.InstallmentStatus == types.InstallmentStatusCancelled {
		return nil, ierr.NewError("installment is already settled").
			WithHint("Paid or cancelled installments cannot receive payments").
			WithReportableDetails(map[string]any{
				"plan_id":            planID,
				"installment_number": number,
				"status":             inst.InstallmentStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		inst.AmountPaid = inst.AmountPaid.Add(req.Amount)
		if inst.AmountPaid.GreaterThanOrEqual(inst.Amount) {
			now := time.Now().UTC()
			inst.InstallmentStatus = types.InstallmentStatusPaid
			inst.PaidAt = &now
		}
		if err := s.InstallmentRepo.Update(txCtx, inst); err != nil {
			return err
		}

		installments, err := s.InstallmentRepo.ListByPlan(txCtx, planID)
		if err != nil {
			return err
		}

		newStatus := paymentplan.DerivePlanStatus(plan, installments)
		if newStatus != plan.PlanStatus {
			plan.PlanStatus = newStatus
			return s.PaymentPlanRepo.Update(txCtx, plan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("applied installment payment",
		"plan_id", planID,
		"installment_number", number,
		"amount", req.Amount,
		"installment_status", inst.InstallmentStatus,
		"plan_status", plan.PlanStatus,
	)

	return s.GetPlan(ctx, planID)
}

// CancelPlan cancels a plan and every installment that has not been
// settled yet. Paid installments keep their history.
func (s *paymentPlanService) CancelPlan(ctx context.Context, id string) (*dto.PaymentPlanResponse, error) {
	plan, err := s.PaymentPlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if plan.PlanStatus != types.PaymentPlanStatusActive {
		return nil, ierr.NewError("only active plans can be cancelled").
			WithHint("The payment plan is not active").
			WithReportableDetails(map[string]any{
				"plan_id": id,
				"status":  plan.PlanStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		installments, err := s.InstallmentRepo.ListByPlan(txCtx, id)
		if err != nil {
			return err
		}

		for _, inst := range installments {
			if inst.InstallmentStatus == types.InstallmentStatusPaid ||
				inst.InstallmentStatus == types.InstallmentStatusCancelled {
				continue
			}
			inst.InstallmentStatus = types.InstallmentStatusCancelled
			if err := s.InstallmentRepo.Update(txCtx, inst); err != nil {
				return err
			}
		}

		plan.PlanStatus = types.PaymentPlanStatusCancelled
		return s.PaymentPlanRepo.Update(txCtx, plan)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("cancelled payment plan", "plan_id", id)
	return s.GetPlan(ctx, id)
}
