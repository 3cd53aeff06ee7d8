package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/domain/paymentplan"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// InMemoryInstallmentStore implements paymentplan.InstallmentRepository
type InMemoryInstallmentStore struct {
	*InMemoryStore[*paymentplan.Installment]
}

// NewInMemoryInstallmentStore creates a new in-memory installment repository
func NewInMemoryInstallmentStore() *InMemoryInstallmentStore {
	return &InMemoryInstallmentStore{
		InMemoryStore: NewInMemoryStore[*paymentplan.Installment](),
	}
}

// create is used by the plan store's CreateWithInstallments
func (m *InMemoryInstallmentStore) create(ctx context.Context, inst *paymentplan.Installment) error {
	if inst == nil {
		return ierr.NewError("installment cannot be nil").
			WithHint("Installment cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if inst.EnvironmentID == "" {
		inst.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	return m.InMemoryStore.Create(ctx, inst.ID, inst)
}

func (m *InMemoryInstallmentStore) Get(ctx context.Context, id string) (*paymentplan.Installment, error) {
	return m.InMemoryStore.Get(ctx, id)
}

func (m *InMemoryInstallmentStore) GetByPlanAndNumber(ctx context.Context, planID string, number int) (*paymentplan.Installment, error) {
	result, err := m.InMemoryStore.List(ctx, nil, func(_ context.Context, inst *paymentplan.Installment, _ interface{}) bool {
		return inst != nil && inst.PlanID == planID && inst.InstallmentNumber == number
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ierr.NewError("installment not found").
			WithHint(fmt.Sprintf("Installment %d not found for plan %s", number, planID)).
			Mark(ierr.ErrNotFound)
	}
	return result[0], nil
}

func (m *InMemoryInstallmentStore) Update(ctx context.Context, inst *paymentplan.Installment) error {
	if inst == nil {
		return ierr.NewError("installment cannot be nil").
			WithHint("Installment cannot be nil").
			Mark(ierr.ErrValidation)
	}

	inst.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, inst.ID, inst)
}

func (m *InMemoryInstallmentStore) ListByPlan(ctx context.Context, planID string) ([]*paymentplan.Installment, error) {
	result, err := m.InMemoryStore.List(ctx, nil, func(_ context.Context, inst *paymentplan.Installment, _ interface{}) bool {
		return inst != nil && inst.PlanID == planID
	}, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].InstallmentNumber < result[j].InstallmentNumber
	})
	return result, nil
}

// ListOverdueCandidates returns pending installments across all tenants
// with a due date before asOf.
func (m *InMemoryInstallmentStore) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit, offset int) ([]*paymentplan.Installment, error) {
	all, err := m.InMemoryStore.List(ctx, nil, func(_ context.Context, inst *paymentplan.Installment, _ interface{}) bool {
		return inst != nil &&
			inst.Status == types.StatusPublished &&
			inst.InstallmentStatus == types.InstallmentStatusPending &&
			inst.DueDate.Before(asOf)
	}, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].DueDate.Equal(all[j].DueDate) {
			return all[i].ID < all[j].ID
		}
		return all[i].DueDate.Before(all[j].DueDate)
	})

	if offset >= len(all) {
		return []*paymentplan.Installment{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
