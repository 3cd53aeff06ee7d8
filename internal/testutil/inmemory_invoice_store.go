package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

// NewInMemoryInvoiceStore creates a new in-memory invoice repository
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func (m *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if inv.EnvironmentID == "" {
		inv.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	return m.InMemoryStore.Create(ctx, inv.ID, inv)
}

func (m *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CheckTenantFilter(ctx, inv.TenantID) {
		return nil, ierr.NewError("item not found").
			WithHint("The requested item does not exist").
			Mark(ierr.ErrNotFound)
	}
	return inv, nil
}

func (m *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}

	inv.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, inv.ID, inv)
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if inv == nil {
		return false
	}

	if !CheckTenantFilter(ctx, inv.TenantID) {
		return false
	}
	if !CheckEnvironmentFilter(ctx, inv.EnvironmentID) {
		return false
	}

	f, ok := filter.(*invoice.InvoiceFilter)
	if !ok || f == nil {
		return true
	}

	if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
		return false
	}

	if len(f.InvoiceStatuses) > 0 && !lo.Contains(f.InvoiceStatuses, inv.InvoiceStatus) {
		return false
	}

	if f.DueBefore != nil {
		if inv.DueDate == nil || !inv.DueDate.Before(*f.DueBefore) {
			return false
		}
	}

	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	if i == nil || j == nil {
		return false
	}
	return i.CreatedAt.After(j.CreatedAt)
}

func (m *InMemoryInvoiceStore) List(ctx context.Context, filter *invoice.InvoiceFilter) ([]*invoice.Invoice, error) {
	return m.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
}

func (m *InMemoryInvoiceStore) Count(ctx context.Context, filter *invoice.InvoiceFilter) (int, error) {
	return m.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

// ListOverdueCandidates returns overdue-eligible invoices across all
// tenants with a due date before asOf and a positive balance.
func (m *InMemoryInvoiceStore) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit, offset int) ([]*invoice.Invoice, error) {
	all, err := m.InMemoryStore.List(ctx, nil, func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv != nil &&
			inv.Status == types.StatusPublished &&
			inv.InvoiceStatus.EligibleForOverdue() &&
			inv.DueDate != nil &&
			inv.DueDate.Before(asOf) &&
			inv.BalanceDue.IsPositive()
	}, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].DueDate.Equal(*all[j].DueDate) {
			return all[i].ID < all[j].ID
		}
		return all[i].DueDate.Before(*all[j].DueDate)
	})

	if offset >= len(all) {
		return []*invoice.Invoice{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
