package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/domain/payment"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

// NewInMemoryPaymentStore creates a new in-memory payment repository
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func (m *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").
			WithHint("Payment cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if p.EnvironmentID == "" {
		p.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	return m.InMemoryStore.Create(ctx, p.ID, p)
}

func (m *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	return m.InMemoryStore.Get(ctx, id)
}

// GetByIdempotencyKey retrieves a payment by idempotency key
func (m *InMemoryPaymentStore) GetByIdempotencyKey(ctx context.Context, key string) (*payment.Payment, error) {
	result, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, p *payment.Payment, _ interface{}) bool {
		return p != nil && p.IdempotencyKey == key && CheckTenantFilter(ctx, p.TenantID)
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ierr.NewError("payment not found").
			WithHint(fmt.Sprintf("Payment not found for idempotency key: %s", key)).
			Mark(ierr.ErrNotFound)
	}
	return result[0], nil
}

func (m *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").
			WithHint("Payment cannot be nil").
			Mark(ierr.ErrValidation)
	}

	p.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, p.ID, p)
}

func (m *InMemoryPaymentStore) Delete(ctx context.Context, id string) error {
	return m.InMemoryStore.Delete(ctx, id)
}

func (m *InMemoryPaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	result, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, p *payment.Payment, _ interface{}) bool {
		return p != nil && p.InvoiceID == invoiceID && CheckTenantFilter(ctx, p.TenantID)
	}, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
