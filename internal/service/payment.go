package service

import (
	"context"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	"github.com/ledgerflow/ledgerflow/internal/domain/payment"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
	"github.com/samber/lo"
)

// PaymentService records, refunds and removes payments. Every mutation
// runs in one transaction together with the invoice balance
// recalculation, so the cached invoice summary can never drift from the
// payment rows.
type PaymentService interface {
	RecordPayment(ctx context.Context, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]*dto.PaymentResponse, error)
	RefundPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	DeletePayment(ctx context.Context, id string) error
}

type paymentService struct {
	ServiceParams
	invoiceService InvoiceService
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams:  params,
		invoiceService: NewInvoiceService(params),
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Replay of the same gateway event returns the original record
	// without touching the invoice again.
	if req.IdempotencyKey != "" {
		existing, err := s.PaymentRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			s.Logger.Infow("returning existing payment for idempotency key",
				"payment_id", existing.ID,
				"idempotency_key", req.IdempotencyKey,
			)
			return &dto.PaymentResponse{Payment: existing}, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}

	inv, err := s.InvoiceRepo.Get(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus == types.InvoiceStatusCancelled {
		return nil, ierr.NewError("cannot record a payment against a cancelled invoice").
			WithHint("The invoice has been cancelled").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	p := req.ToPayment(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.PaymentRepo.Create(txCtx, p); err != nil {
			return err
		}
		_, err := s.invoiceService.RecalculateBalance(txCtx, p.InvoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded payment",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"amount", p.Amount,
	)

	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]*dto.PaymentResponse, error) {
	payments, err := s.PaymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return lo.Map(payments, func(p *payment.Payment, _ int) *dto.PaymentResponse {
		return &dto.PaymentResponse{Payment: p}
	}), nil
}

func (s *paymentService) RefundPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.PaymentStatus != types.PaymentStatusSucceeded {
		return nil, ierr.NewError("only succeeded payments can be refunded").
			WithHint("The payment is not in a refundable state").
			WithReportableDetails(map[string]any{
				"payment_id": id,
				"status":     p.PaymentStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	p.PaymentStatus = types.PaymentStatusRefunded
	p.RefundedAt = &now

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.PaymentRepo.Update(txCtx, p); err != nil {
			return err
		}
		_, err := s.invoiceService.RecalculateBalance(txCtx, p.InvoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("refunded payment",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"amount", p.Amount,
	)

	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, id string) error {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.PaymentRepo.Delete(txCtx, id); err != nil {
			return err
		}
		_, err := s.invoiceService.RecalculateBalance(txCtx, p.InvoiceID)
		return err
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("deleted payment",
		"payment_id", id,
		"invoice_id", p.InvoiceID,
	)

	return nil
}
