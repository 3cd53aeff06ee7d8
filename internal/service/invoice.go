package service

import (
	"context"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
	"github.com/samber/lo"
)

// InvoiceService manages invoices and keeps their cached payment
// summaries consistent. RecalculateBalance is the single write path for
// amount_paid, balance_due and the payment-driven statuses.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *invoice.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	FinalizeInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	RecalculateBalance(ctx context.Context, id string) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv := req.ToInvoice(ctx)
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"customer_id", inv.CustomerID,
		"total_amount", inv.TotalAmount,
	)

	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *invoice.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = &invoice.InvoiceFilter{QueryFilter: types.NewDefaultQueryFilter()}
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.QueryFilter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListInvoicesResponse{
		Items: lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
			return &dto.InvoiceResponse{Invoice: inv}
		}),
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

// FinalizeInvoice moves a draft invoice to sent, which makes it eligible
// for payment application and the overdue sweep.
func (s *invoiceService) FinalizeInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus != types.InvoiceStatusDraft {
		return nil, ierr.NewError("only draft invoices can be finalized").
			WithHint("The invoice has already been finalized").
			WithReportableDetails(map[string]any{
				"invoice_id": id,
				"status":     inv.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.InvoiceStatus = types.InvoiceStatusSent
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("finalized invoice", "invoice_id", id)
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

// RecalculateBalance re-derives the invoice's payment summary from its
// current payment rows and persists the result. Safe to run inside a
// caller-held transaction; the repositories pick the transaction up from
// the context.
func (s *invoiceService) RecalculateBalance(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	result := invoice.ComputeBalance(inv, payments, time.Now().UTC())
	inv.Apply(result)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Debugw("recalculated invoice balance",
		"invoice_id", inv.ID,
		"amount_paid", inv.AmountPaid,
		"balance_due", inv.BalanceDue,
		"invoice_status", inv.InvoiceStatus,
	)

	return &dto.InvoiceResponse{Invoice: inv}, nil
}
