package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/domain/paymentplan"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// InMemoryPaymentPlanStore implements paymentplan.Repository
type InMemoryPaymentPlanStore struct {
	*InMemoryStore[*paymentplan.Plan]
	// installments is the companion store so CreateWithInstallments can
	// write both sides like the transactional repository does
	installments *InMemoryInstallmentStore
}

// NewInMemoryPaymentPlanStore creates a new in-memory plan repository
// bound to the given installment store
func NewInMemoryPaymentPlanStore(installments *InMemoryInstallmentStore) *InMemoryPaymentPlanStore {
	return &InMemoryPaymentPlanStore{
		InMemoryStore: NewInMemoryStore[*paymentplan.Plan](),
		installments:  installments,
	}
}

func (m *InMemoryPaymentPlanStore) CreateWithInstallments(ctx context.Context, plan *paymentplan.Plan, installments []*paymentplan.Installment) error {
	if plan == nil {
		return ierr.NewError("plan cannot be nil").
			WithHint("Plan cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if plan.EnvironmentID == "" {
		plan.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	if err := m.InMemoryStore.Create(ctx, plan.ID, plan); err != nil {
		return err
	}

	for _, inst := range installments {
		if err := m.installments.create(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

func (m *InMemoryPaymentPlanStore) Get(ctx context.Context, id string) (*paymentplan.Plan, error) {
	plan, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CheckTenantFilter(ctx, plan.TenantID) {
		return nil, ierr.NewError("item not found").
			WithHint("The requested item does not exist").
			Mark(ierr.ErrNotFound)
	}
	return plan, nil
}

func (m *InMemoryPaymentPlanStore) Update(ctx context.Context, plan *paymentplan.Plan) error {
	if plan == nil {
		return ierr.NewError("plan cannot be nil").
			WithHint("Plan cannot be nil").
			Mark(ierr.ErrValidation)
	}

	plan.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, plan.ID, plan)
}

func (m *InMemoryPaymentPlanStore) ListByCustomer(ctx context.Context, customerID string) ([]*paymentplan.Plan, error) {
	result, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, p *paymentplan.Plan, _ interface{}) bool {
		return p != nil && p.CustomerID == customerID && CheckTenantFilter(ctx, p.TenantID)
	}, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
