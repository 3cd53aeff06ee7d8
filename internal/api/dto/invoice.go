package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	CustomerID  string          `json:"customer_id" binding:"required"`
	Currency    string          `json:"currency" binding:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" binding:"required"`
	Description string          `json:"description,omitempty"`
	IssueDate   *time.Time      `json:"issue_date,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Metadata    types.Metadata  `json:"metadata,omitempty"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if r.TotalAmount.IsNegative() {
		return ierr.NewError("total_amount must be non negative").
			WithHint("Invoice total must not be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToInvoice converts the request to a draft domain invoice
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context) *invoice.Invoice {
	inv := invoice.NewInvoice(ctx)
	inv.CustomerID = r.CustomerID
	inv.Currency = r.Currency
	inv.TotalAmount = r.TotalAmount
	inv.BalanceDue = r.TotalAmount
	inv.AmountPaid = decimal.Zero
	inv.Description = r.Description
	if r.IssueDate != nil {
		inv.IssueDate = *r.IssueDate
	}
	inv.DueDate = r.DueDate
	inv.Metadata = r.Metadata
	inv.EnvironmentID = types.GetEnvironmentID(ctx)
	return inv
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	*invoice.Invoice
}

// ListInvoicesResponse represents a paginated list of invoices
type ListInvoicesResponse struct {
	Items      []*InvoiceResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}
