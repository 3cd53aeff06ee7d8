package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/postgres"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

type recurringRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewRecurringRepository(db *postgres.DB, logger *logger.Logger) recurring.Repository {
	return &recurringRepository{db: db, logger: logger}
}

const recurringColumns = `id, customer_id, currency, amount, description, frequency,
	interval_value, start_date, end_date, max_occurrences, occurrences_generated,
	next_occurrence_date, recurring_status, metadata, environment_id,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *recurringRepository) Create(ctx context.Context, def *recurring.Definition) error {
	query := fmt.Sprintf(`INSERT INTO recurring_definitions (%s) VALUES (
		:id, :customer_id, :currency, :amount, :description, :frequency,
		:interval_value, :start_date, :end_date, :max_occurrences, :occurrences_generated,
		:next_occurrence_date, :recurring_status, :metadata, :environment_id,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		recurringColumns)

	if _, err := r.db.NamedExecContext(ctx, query, def); err != nil {
		return wrapDBError(err, "recurring definition")
	}
	return nil
}

func (r *recurringRepository) Get(ctx context.Context, id string) (*recurring.Definition, error) {
	var def recurring.Definition
	query := fmt.Sprintf(`SELECT %s FROM recurring_definitions
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, recurringColumns)

	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &def, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "recurring definition")
	}
	return &def, nil
}

func (r *recurringRepository) Update(ctx context.Context, def *recurring.Definition) error {
	def.UpdatedAt = time.Now().UTC()
	def.UpdatedBy = types.GetUserID(ctx)

	query := `UPDATE recurring_definitions SET
		customer_id = :customer_id,
		currency = :currency,
		amount = :amount,
		description = :description,
		frequency = :frequency,
		interval_value = :interval_value,
		start_date = :start_date,
		end_date = :end_date,
		max_occurrences = :max_occurrences,
		occurrences_generated = :occurrences_generated,
		next_occurrence_date = :next_occurrence_date,
		recurring_status = :recurring_status,
		metadata = :metadata,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, def)
	if err != nil {
		return wrapDBError(err, "recurring definition")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return wrapDBError(errNoRowsUpdated, "recurring definition")
	}
	return nil
}

func (r *recurringRepository) List(ctx context.Context, filter *recurring.DefinitionFilter) ([]*recurring.Definition, error) {
	query, args := r.buildListQuery(ctx, filter, recurringColumns, false)

	defs := make([]*recurring.Definition, 0)
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &defs, query, args...); err != nil {
		return nil, wrapDBError(err, "recurring definition")
	}
	return defs, nil
}

func (r *recurringRepository) Count(ctx context.Context, filter *recurring.DefinitionFilter) (int, error) {
	query, args := r.buildListQuery(ctx, filter, "COUNT(*)", true)

	var count int
	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, wrapDBError(err, "recurring definition")
	}
	return count, nil
}

func (r *recurringRepository) buildListQuery(ctx context.Context, filter *recurring.DefinitionFilter, columns string, isCount bool) (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0)

	sb.WriteString(fmt.Sprintf("SELECT %s FROM recurring_definitions WHERE tenant_id = $1 AND status != $2", columns))
	args = append(args, types.GetTenantID(ctx), types.StatusDeleted)

	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		sb.WriteString(fmt.Sprintf(" AND customer_id = $%d", len(args)))
	}

	if len(filter.RecurringStatuses) > 0 {
		placeholders := make([]string, 0, len(filter.RecurringStatuses))
		for _, s := range filter.RecurringStatuses {
			args = append(args, s)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		sb.WriteString(fmt.Sprintf(" AND recurring_status IN (%s)", strings.Join(placeholders, ", ")))
	}

	if isCount {
		return sb.String(), args
	}

	sb.WriteString(fmt.Sprintf(" ORDER BY %s %s", sanitizeSortColumn(filter.GetSort()), sanitizeSortOrder(filter.GetOrder())))
	if !filter.IsUnlimited() {
		args = append(args, filter.GetLimit())
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	args = append(args, filter.GetOffset())
	sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	return sb.String(), args
}

func (r *recurringRepository) ListDue(ctx context.Context, asOf time.Time, limit, offset int) ([]*recurring.Definition, error) {
	// Cross-tenant by design: the scheduler is the only caller and runs
	// outside any request scope.
	query := fmt.Sprintf(`SELECT %s FROM recurring_definitions
		WHERE status = $1
		  AND recurring_status = $2
		  AND next_occurrence_date <= $3
		ORDER BY next_occurrence_date ASC, id ASC
		LIMIT $4 OFFSET $5`, recurringColumns)

	defs := make([]*recurring.Definition, 0)
	q := r.db.GetQuerier(ctx)
	err := q.SelectContext(ctx, &defs, query,
		types.StatusPublished, types.RecurringStatusActive, asOf, limit, offset)
	if err != nil {
		return nil, wrapDBError(err, "recurring definition")
	}
	return defs, nil
}

type occurrenceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewOccurrenceRepository(db *postgres.DB, logger *logger.Logger) recurring.OccurrenceRepository {
	return &occurrenceRepository{db: db, logger: logger}
}

const occurrenceColumns = `id, definition_id, occurrence_number, scheduled_date,
	generated_at, sent_at, occurrence_status, error_message, invoice_id,
	environment_id, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *occurrenceRepository) Create(ctx context.Context, occ *recurring.Occurrence) error {
	// The unique index on (definition_id, occurrence_number) backs the
	// scheduler's idempotency contract; a duplicate surfaces as
	// ErrAlreadyExists and rolls back the definition advancement.
	query := fmt.Sprintf(`INSERT INTO recurring_occurrences (%s) VALUES (
		:id, :definition_id, :occurrence_number, :scheduled_date,
		:generated_at, :sent_at, :occurrence_status, :error_message, :invoice_id,
		:environment_id, :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		occurrenceColumns)

	if _, err := r.db.NamedExecContext(ctx, query, occ); err != nil {
		return wrapDBError(err, "occurrence")
	}
	return nil
}

func (r *occurrenceRepository) Get(ctx context.Context, id string) (*recurring.Occurrence, error) {
	var occ recurring.Occurrence
	query := fmt.Sprintf(`SELECT %s FROM recurring_occurrences
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, occurrenceColumns)

	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &occ, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "occurrence")
	}
	return &occ, nil
}

func (r *occurrenceRepository) Update(ctx context.Context, occ *recurring.Occurrence) error {
	occ.UpdatedAt = time.Now().UTC()
	occ.UpdatedBy = types.GetUserID(ctx)

	query := `UPDATE recurring_occurrences SET
		generated_at = :generated_at,
		sent_at = :sent_at,
		occurrence_status = :occurrence_status,
		error_message = :error_message,
		invoice_id = :invoice_id,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, occ)
	if err != nil {
		return wrapDBError(err, "occurrence")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return wrapDBError(errNoRowsUpdated, "occurrence")
	}
	return nil
}

func (r *occurrenceRepository) ListByDefinition(ctx context.Context, definitionID string) ([]*recurring.Occurrence, error) {
	query := fmt.Sprintf(`SELECT %s FROM recurring_occurrences
		WHERE definition_id = $1 AND tenant_id = $2 AND status != $3
		ORDER BY occurrence_number ASC`, occurrenceColumns)

	occs := make([]*recurring.Occurrence, 0)
	q := r.db.GetQuerier(ctx)
	err := q.SelectContext(ctx, &occs, query, definitionID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "occurrence")
	}
	return occs, nil
}

func (r *occurrenceRepository) CountByDefinition(ctx context.Context, definitionID string) (int, error) {
	query := `SELECT COUNT(*) FROM recurring_occurrences
		WHERE definition_id = $1 AND tenant_id = $2 AND status != $3`

	var count int
	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &count, query, definitionID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return 0, wrapDBError(err, "occurrence")
	}
	return count, nil
}
