package invoice

import (
	"context"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/types"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	*types.QueryFilter
	CustomerID      string                `form:"customer_id"`
	InvoiceStatuses []types.InvoiceStatus `form:"invoice_status"`
	DueBefore       *time.Time            `form:"due_before"`
}

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, inv *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, inv *Invoice) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *InvoiceFilter) (int, error)

	// ListOverdueCandidates retrieves invoices across all tenants in an
	// overdue-eligible status with a due date before asOf and a positive
	// balance. Used exclusively by the overdue sweep.
	ListOverdueCandidates(ctx context.Context, asOf time.Time, limit, offset int) ([]*Invoice, error)
}
