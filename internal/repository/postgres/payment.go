package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/domain/payment"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/postgres"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

const paymentColumns = `id, idempotency_key, invoice_id, amount, currency,
	payment_method_type, payment_status, received_at, refunded_at, error_message,
	metadata, environment_id, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := fmt.Sprintf(`INSERT INTO payments (%s) VALUES (
		:id, :idempotency_key, :invoice_id, :amount, :currency,
		:payment_method_type, :payment_status, :received_at, :refunded_at, :error_message,
		:metadata, :environment_id, :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		paymentColumns)

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return wrapDBError(err, "payment")
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	var p payment.Payment
	query := fmt.Sprintf(`SELECT %s FROM payments
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, paymentColumns)

	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &p, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "payment")
	}
	return &p, nil
}

func (r *paymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*payment.Payment, error) {
	var p payment.Payment
	query := fmt.Sprintf(`SELECT %s FROM payments
		WHERE idempotency_key = $1 AND tenant_id = $2 AND status != $3`, paymentColumns)

	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &p, query, key, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "payment")
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = types.GetUserID(ctx)

	query := `UPDATE payments SET
		amount = :amount,
		payment_status = :payment_status,
		received_at = :received_at,
		refunded_at = :refunded_at,
		error_message = :error_message,
		metadata = :metadata,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return wrapDBError(err, "payment")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return wrapDBError(errNoRowsUpdated, "payment")
	}
	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	// Soft delete; the balance recompute only reads published rows.
	query := `UPDATE payments SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5`

	q := r.db.GetQuerier(ctx)
	result, err := q.ExecContext(ctx, query,
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx), id, types.GetTenantID(ctx))
	if err != nil {
		return wrapDBError(err, "payment")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return wrapDBError(errNoRowsUpdated, "payment")
	}
	return nil
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments
		WHERE invoice_id = $1 AND tenant_id = $2 AND status != $3
		ORDER BY created_at ASC`, paymentColumns)

	payments := make([]*payment.Payment, 0)
	q := r.db.GetQuerier(ctx)
	err := q.SelectContext(ctx, &payments, query, invoiceID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "payment")
	}
	return payments, nil
}
