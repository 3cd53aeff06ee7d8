package recurring

import (
	"context"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/types"
)

// DefinitionFilter narrows definition listings
type DefinitionFilter struct {
	*types.QueryFilter
	CustomerID        string                  `form:"customer_id"`
	RecurringStatuses []types.RecurringStatus `form:"recurring_status"`
}

// Repository defines the interface for recurring definition persistence
type Repository interface {
	// Create creates a new recurring definition
	Create(ctx context.Context, def *Definition) error

	// Get retrieves a definition by ID
	Get(ctx context.Context, id string) (*Definition, error)

	// Update updates an existing definition
	Update(ctx context.Context, def *Definition) error

	// List retrieves definitions based on filter criteria
	List(ctx context.Context, filter *DefinitionFilter) ([]*Definition, error)

	// Count returns the total count of definitions based on filter criteria
	Count(ctx context.Context, filter *DefinitionFilter) (int, error)

	// ListDue retrieves active definitions across all tenants whose next
	// occurrence date is at or before asOf, ordered by next occurrence
	// date. Used exclusively by the scheduler batch.
	ListDue(ctx context.Context, asOf time.Time, limit, offset int) ([]*Definition, error)
}

// OccurrenceRepository defines the interface for occurrence persistence
type OccurrenceRepository interface {
	// Create creates a new occurrence. Implementations must reject a
	// duplicate (definition_id, occurrence_number) pair.
	Create(ctx context.Context, occ *Occurrence) error

	// Get retrieves an occurrence by ID
	Get(ctx context.Context, id string) (*Occurrence, error)

	// Update updates an existing occurrence
	Update(ctx context.Context, occ *Occurrence) error

	// ListByDefinition retrieves all occurrences of a definition ordered
	// by occurrence number
	ListByDefinition(ctx context.Context, definitionID string) ([]*Occurrence, error)

	// CountByDefinition returns the number of occurrences of a definition
	CountByDefinition(ctx context.Context, definitionID string) (int, error)
}
