package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// InMemoryRecurringStore implements recurring.Repository
type InMemoryRecurringStore struct {
	*InMemoryStore[*recurring.Definition]
}

// NewInMemoryRecurringStore creates a new in-memory recurring definition repository
func NewInMemoryRecurringStore() *InMemoryRecurringStore {
	return &InMemoryRecurringStore{
		InMemoryStore: NewInMemoryStore[*recurring.Definition](),
	}
}

func (m *InMemoryRecurringStore) Create(ctx context.Context, def *recurring.Definition) error {
	if def == nil {
		return ierr.NewError("definition cannot be nil").
			WithHint("Definition cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if def.EnvironmentID == "" {
		def.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	return m.InMemoryStore.Create(ctx, def.ID, def)
}

func (m *InMemoryRecurringStore) Get(ctx context.Context, id string) (*recurring.Definition, error) {
	def, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CheckTenantFilter(ctx, def.TenantID) {
		return nil, ierr.NewError("item not found").
			WithHint("The requested item does not exist").
			Mark(ierr.ErrNotFound)
	}
	return def, nil
}

func (m *InMemoryRecurringStore) Update(ctx context.Context, def *recurring.Definition) error {
	if def == nil {
		return ierr.NewError("definition cannot be nil").
			WithHint("Definition cannot be nil").
			Mark(ierr.ErrValidation)
	}

	def.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, def.ID, def)
}

func recurringFilterFn(ctx context.Context, def *recurring.Definition, filter interface{}) bool {
	if def == nil {
		return false
	}

	if !CheckTenantFilter(ctx, def.TenantID) {
		return false
	}
	if !CheckEnvironmentFilter(ctx, def.EnvironmentID) {
		return false
	}

	f, ok := filter.(*recurring.DefinitionFilter)
	if !ok || f == nil {
		return true
	}

	if f.CustomerID != "" && def.CustomerID != f.CustomerID {
		return false
	}

	if len(f.RecurringStatuses) > 0 && !lo.Contains(f.RecurringStatuses, def.RecurringStatus) {
		return false
	}

	return true
}

func recurringSortFn(i, j *recurring.Definition) bool {
	if i == nil || j == nil {
		return false
	}
	return i.CreatedAt.After(j.CreatedAt)
}

func (m *InMemoryRecurringStore) List(ctx context.Context, filter *recurring.DefinitionFilter) ([]*recurring.Definition, error) {
	return m.InMemoryStore.List(ctx, filter, recurringFilterFn, recurringSortFn)
}

func (m *InMemoryRecurringStore) Count(ctx context.Context, filter *recurring.DefinitionFilter) (int, error) {
	return m.InMemoryStore.Count(ctx, filter, recurringFilterFn)
}

// ListDue returns active definitions across all tenants due at or before
// asOf, ordered by next occurrence date.
func (m *InMemoryRecurringStore) ListDue(ctx context.Context, asOf time.Time, limit, offset int) ([]*recurring.Definition, error) {
	all, err := m.InMemoryStore.List(ctx, nil, func(_ context.Context, def *recurring.Definition, _ interface{}) bool {
		return def != nil &&
			def.Status == types.StatusPublished &&
			def.RecurringStatus == types.RecurringStatusActive &&
			!def.NextOccurrenceDate.After(asOf)
	}, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].NextOccurrenceDate.Equal(all[j].NextOccurrenceDate) {
			return all[i].ID < all[j].ID
		}
		return all[i].NextOccurrenceDate.Before(all[j].NextOccurrenceDate)
	})

	if offset >= len(all) {
		return []*recurring.Definition{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
