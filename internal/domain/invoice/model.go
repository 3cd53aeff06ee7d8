package invoice

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// Invoice represents the invoice domain model. AmountPaid and BalanceDue
// are cached summaries of the payment set; RecomputeBalance is the only
// code that derives them.
type Invoice struct {
	ID            string  `db:"id" json:"id"`
	CustomerID    string  `db:"customer_id" json:"customer_id"`
	InvoiceNumber *string `db:"invoice_number" json:"invoice_number,omitempty"`
	Currency      string  `db:"currency" json:"currency"`
	Description   string  `db:"description" json:"description,omitempty"`

	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	AmountPaid  decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	BalanceDue  decimal.Decimal `db:"balance_due" json:"balance_due"`

	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`

	IssueDate   time.Time  `db:"issue_date" json:"issue_date"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	OverdueDate *time.Time `db:"overdue_date" json:"overdue_date,omitempty"`
	PaidAt      *time.Time `db:"paid_at" json:"paid_at,omitempty"`

	// Set when the invoice was produced by the recurring scheduler
	RecurringDefinitionID *string `db:"recurring_definition_id" json:"recurring_definition_id,omitempty"`
	OccurrenceID          *string `db:"occurrence_id" json:"occurrence_id,omitempty"`

	Metadata      types.Metadata `db:"metadata" json:"metadata,omitempty"`
	EnvironmentID string         `db:"environment_id" json:"environment_id"`

	types.BaseModel
}

// NewInvoice builds a draft invoice with a generated document number
func NewInvoice(ctx context.Context) *Invoice {
	return &Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: lo.ToPtr(types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE_NUM)),
		InvoiceStatus: types.InvoiceStatusDraft,
		IssueDate:     time.Now().UTC(),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

func (i *Invoice) Validate() error {
	if i.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("Invoice must reference a customer").
			Mark(ierr.ErrValidation)
	}

	if i.TotalAmount.IsNegative() {
		return ierr.NewError("total_amount must be non negative").
			WithHint("Invoice total must not be negative").
			Mark(ierr.ErrValidation)
	}

	if i.AmountPaid.IsNegative() {
		return ierr.NewError("amount_paid must be non negative").
			WithHint("Invoice paid amount must not be negative").
			Mark(ierr.ErrValidation)
	}

	if i.BalanceDue.IsNegative() {
		return ierr.NewError("balance_due must be non negative").
			WithHint("Invoice balance must not be negative").
			Mark(ierr.ErrValidation)
	}

	return i.InvoiceStatus.Validate()
}
