package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/domain/paymentplan"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/postgres"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

type paymentPlanRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentPlanRepository(db *postgres.DB, logger *logger.Logger) paymentplan.Repository {
	return &paymentPlanRepository{db: db, logger: logger}
}

const planColumns = `id, customer_id, invoice_id, currency, total_amount,
	installment_count, installment_amount, frequency, interval_value, start_date,
	plan_status, environment_id, tenant_id, status, created_at, updated_at,
	created_by, updated_by`

const installmentColumns = `id, plan_id, installment_number, due_date, amount,
	amount_paid, installment_status, paid_at, environment_id, tenant_id, status,
	created_at, updated_at, created_by, updated_by`

func (r *paymentPlanRepository) CreateWithInstallments(ctx context.Context, plan *paymentplan.Plan, installments []*paymentplan.Installment) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		planQuery := fmt.Sprintf(`INSERT INTO payment_plans (%s) VALUES (
			:id, :customer_id, :invoice_id, :currency, :total_amount,
			:installment_count, :installment_amount, :frequency, :interval_value, :start_date,
			:plan_status, :environment_id, :tenant_id, :status, :created_at, :updated_at,
			:created_by, :updated_by)`, planColumns)

		if _, err := r.db.NamedExecContext(ctx, planQuery, plan); err != nil {
			return wrapDBError(err, "payment plan")
		}

		instQuery := fmt.Sprintf(`INSERT INTO payment_plan_installments (%s) VALUES (
			:id, :plan_id, :installment_number, :due_date, :amount,
			:amount_paid, :installment_status, :paid_at, :environment_id, :tenant_id, :status,
			:created_at, :updated_at, :created_by, :updated_by)`, installmentColumns)

		for _, inst := range installments {
			if _, err := r.db.NamedExecContext(ctx, instQuery, inst); err != nil {
				return wrapDBError(err, "installment")
			}
		}
		return nil
	})
}

func (r *paymentPlanRepository) Get(ctx context.Context, id string) (*paymentplan.Plan, error) {
	var plan paymentplan.Plan
	query := fmt.Sprintf(`SELECT %s FROM payment_plans
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, planColumns)

	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &plan, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "payment plan")
	}
	return &plan, nil
}

func (r *paymentPlanRepository) Update(ctx context.Context, plan *paymentplan.Plan) error {
	plan.UpdatedAt = time.Now().UTC()
	plan.UpdatedBy = types.GetUserID(ctx)

	query := `UPDATE payment_plans SET
		plan_status = :plan_status,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, plan)
	if err != nil {
		return wrapDBError(err, "payment plan")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return wrapDBError(errNoRowsUpdated, "payment plan")
	}
	return nil
}

func (r *paymentPlanRepository) ListByCustomer(ctx context.Context, customerID string) ([]*paymentplan.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_plans
		WHERE customer_id = $1 AND tenant_id = $2 AND status != $3
		ORDER BY created_at DESC`, planColumns)

	plans := make([]*paymentplan.Plan, 0)
	q := r.db.GetQuerier(ctx)
	err := q.SelectContext(ctx, &plans, query, customerID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "payment plan")
	}
	return plans, nil
}

type installmentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInstallmentRepository(db *postgres.DB, logger *logger.Logger) paymentplan.InstallmentRepository {
	return &installmentRepository{db: db, logger: logger}
}

func (r *installmentRepository) Get(ctx context.Context, id string) (*paymentplan.Installment, error) {
	var inst paymentplan.Installment
	query := fmt.Sprintf(`SELECT %s FROM payment_plan_installments
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, installmentColumns)

	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &inst, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "installment")
	}
	return &inst, nil
}

func (r *installmentRepository) GetByPlanAndNumber(ctx context.Context, planID string, number int) (*paymentplan.Installment, error) {
	var inst paymentplan.Installment
	query := fmt.Sprintf(`SELECT %s FROM payment_plan_installments
		WHERE plan_id = $1 AND installment_number = $2 AND tenant_id = $3 AND status != $4`,
		installmentColumns)

	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &inst, query, planID, number, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "installment")
	}
	return &inst, nil
}

func (r *installmentRepository) Update(ctx context.Context, inst *paymentplan.Installment) error {
	inst.UpdatedAt = time.Now().UTC()
	inst.UpdatedBy = types.GetUserID(ctx)

	query := `UPDATE payment_plan_installments SET
		amount_paid = :amount_paid,
		installment_status = :installment_status,
		paid_at = :paid_at,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, inst)
	if err != nil {
		return wrapDBError(err, "installment")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return wrapDBError(errNoRowsUpdated, "installment")
	}
	return nil
}

func (r *installmentRepository) ListByPlan(ctx context.Context, planID string) ([]*paymentplan.Installment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_plan_installments
		WHERE plan_id = $1 AND tenant_id = $2 AND status != $3
		ORDER BY installment_number ASC`, installmentColumns)

	installments := make([]*paymentplan.Installment, 0)
	q := r.db.GetQuerier(ctx)
	err := q.SelectContext(ctx, &installments, query, planID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, wrapDBError(err, "installment")
	}
	return installments, nil
}

func (r *installmentRepository) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit, offset int) ([]*paymentplan.Installment, error) {
	// Cross-tenant: only the overdue sweep calls this.
	query := fmt.Sprintf(`SELECT %s FROM payment_plan_installments
		WHERE status = $1
		  AND installment_status = $2
		  AND due_date < $3
		ORDER BY due_date ASC, id ASC
		LIMIT $4 OFFSET $5`, installmentColumns)

	installments := make([]*paymentplan.Installment, 0)
	q := r.db.GetQuerier(ctx)
	err := q.SelectContext(ctx, &installments, query,
		types.StatusPublished, types.InstallmentStatusPending, asOf, limit, offset)
	if err != nil {
		return nil, wrapDBError(err, "installment")
	}
	return installments, nil
}
