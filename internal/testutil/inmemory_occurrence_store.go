package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// InMemoryOccurrenceStore implements recurring.OccurrenceRepository
type InMemoryOccurrenceStore struct {
	*InMemoryStore[*recurring.Occurrence]
	mu sync.RWMutex
	// createErrs simulates per-definition write failures
	createErrs map[string]error
}

// NewInMemoryOccurrenceStore creates a new in-memory occurrence repository
func NewInMemoryOccurrenceStore() *InMemoryOccurrenceStore {
	return &InMemoryOccurrenceStore{
		InMemoryStore: NewInMemoryStore[*recurring.Occurrence](),
		createErrs:    make(map[string]error),
	}
}

// Clear resets all stored data
func (m *InMemoryOccurrenceStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InMemoryStore.Clear()
	m.createErrs = make(map[string]error)
}

// FailCreateForDefinition makes Create fail with the given error for
// occurrences of one definition. Helper for partial-failure tests.
func (m *InMemoryOccurrenceStore) FailCreateForDefinition(definitionID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErrs[definitionID] = err
}

// Create stores a new occurrence, rejecting duplicate
// (definition_id, occurrence_number) pairs the way the unique index does.
func (m *InMemoryOccurrenceStore) Create(ctx context.Context, occ *recurring.Occurrence) error {
	if occ == nil {
		return ierr.NewError("occurrence cannot be nil").
			WithHint("Occurrence cannot be nil").
			Mark(ierr.ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, exists := m.createErrs[occ.DefinitionID]; exists {
		return err
	}

	existing, _ := m.InMemoryStore.List(ctx, nil, func(_ context.Context, o *recurring.Occurrence, _ interface{}) bool {
		return o != nil && o.DefinitionID == occ.DefinitionID && o.OccurrenceNumber == occ.OccurrenceNumber
	}, nil)
	if len(existing) > 0 {
		return ierr.NewError("occurrence already exists").
			WithHint(fmt.Sprintf("Occurrence %d already exists for definition %s", occ.OccurrenceNumber, occ.DefinitionID)).
			Mark(ierr.ErrAlreadyExists)
	}

	if occ.EnvironmentID == "" {
		occ.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	return m.InMemoryStore.Create(ctx, occ.ID, occ)
}

func (m *InMemoryOccurrenceStore) Get(ctx context.Context, id string) (*recurring.Occurrence, error) {
	return m.InMemoryStore.Get(ctx, id)
}

func (m *InMemoryOccurrenceStore) Update(ctx context.Context, occ *recurring.Occurrence) error {
	if occ == nil {
		return ierr.NewError("occurrence cannot be nil").
			WithHint("Occurrence cannot be nil").
			Mark(ierr.ErrValidation)
	}

	occ.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, occ.ID, occ)
}

func (m *InMemoryOccurrenceStore) ListByDefinition(ctx context.Context, definitionID string) ([]*recurring.Occurrence, error) {
	result, err := m.InMemoryStore.List(ctx, nil, func(_ context.Context, o *recurring.Occurrence, _ interface{}) bool {
		return o != nil && o.DefinitionID == definitionID
	}, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].OccurrenceNumber < result[j].OccurrenceNumber
	})
	return result, nil
}

func (m *InMemoryOccurrenceStore) CountByDefinition(ctx context.Context, definitionID string) (int, error) {
	result, err := m.ListByDefinition(ctx, definitionID)
	if err != nil {
		return 0, err
	}
	return len(result), nil
}
