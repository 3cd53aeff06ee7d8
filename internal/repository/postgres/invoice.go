package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/postgres"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `id, customer_id, invoice_number, currency, description,
	total_amount, amount_paid, balance_due, invoice_status, issue_date, due_date,
	overdue_date, paid_at, recurring_definition_id, occurrence_id, metadata,
	environment_id, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := fmt.Sprintf(`INSERT INTO invoices (%s) VALUES (
		:id, :customer_id, :invoice_number, :currency, :description,
		:total_amount, :amount_paid, :balance_due, :invoice_status, :issue_date, :due_date,
		:overdue_date, :paid_at, :recurring_definition_id, :occurrence_id, :metadata,
		:environment_id, :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		invoiceColumns)

	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		return wrapDBError(err, "invoice")
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	query := fmt.Sprintf(`SELECT %s FROM invoices
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, invoiceColumns)

	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &inv, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "invoice")
	}
	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)

	query := `UPDATE invoices SET
		customer_id = :customer_id,
		currency = :currency,
		description = :description,
		total_amount = :total_amount,
		amount_paid = :amount_paid,
		balance_due = :balance_due,
		invoice_status = :invoice_status,
		due_date = :due_date,
		overdue_date = :overdue_date,
		paid_at = :paid_at,
		metadata = :metadata,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		return wrapDBError(err, "invoice")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return wrapDBError(errNoRowsUpdated, "invoice")
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *invoice.InvoiceFilter) ([]*invoice.Invoice, error) {
	query, args := r.buildListQuery(ctx, filter, invoiceColumns, false)

	invoices := make([]*invoice.Invoice, 0)
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, wrapDBError(err, "invoice")
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *invoice.InvoiceFilter) (int, error) {
	query, args := r.buildListQuery(ctx, filter, "COUNT(*)", true)

	var count int
	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, wrapDBError(err, "invoice")
	}
	return count, nil
}

func (r *invoiceRepository) buildListQuery(ctx context.Context, filter *invoice.InvoiceFilter, columns string, isCount bool) (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0)

	sb.WriteString(fmt.Sprintf("SELECT %s FROM invoices WHERE tenant_id = $1 AND status != $2", columns))
	args = append(args, types.GetTenantID(ctx), types.StatusDeleted)

	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		sb.WriteString(fmt.Sprintf(" AND customer_id = $%d", len(args)))
	}

	if len(filter.InvoiceStatuses) > 0 {
		placeholders := make([]string, 0, len(filter.InvoiceStatuses))
		for _, s := range filter.InvoiceStatuses {
			args = append(args, s)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		sb.WriteString(fmt.Sprintf(" AND invoice_status IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		sb.WriteString(fmt.Sprintf(" AND due_date < $%d", len(args)))
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

func (r *invoiceRepository) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit, offset int) ([]*invoice.Invoice, error) {
	// Cross-tenant: only the overdue sweep calls this.
	query := fmt.Sprintf(`SELECT %s FROM invoices
		WHERE status = $1
		  AND invoice_status IN ($2, $3, $4)
		  AND due_date < $5
		  AND balance_due > 0
		ORDER BY due_date ASC, id ASC
		LIMIT $6 OFFSET $7`, invoiceColumns)

	invoices := make([]*invoice.Invoice, 0)
	q := r.db.GetQuerier(ctx)
	err := q.SelectContext(ctx, &invoices, query,
		types.StatusPublished,
		types.InvoiceStatusSent, types.InvoiceStatusViewed, types.InvoiceStatusPartial,
		asOf, limit, offset)
	if err != nil {
		return nil, wrapDBError(err, "invoice")
	}
	return invoices, nil
}
