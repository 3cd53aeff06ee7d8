package paymentplan

import (
	"context"
	"time"
)

// Repository defines the interface for payment plan persistence
type Repository interface {
	// CreateWithInstallments creates a plan and its full installment
	// schedule as one atomic unit
	CreateWithInstallments(ctx context.Context, plan *Plan, installments []*Installment) error

	// Get retrieves a plan by ID
	Get(ctx context.Context, id string) (*Plan, error)

	// Update updates an existing plan
	Update(ctx context.Context, plan *Plan) error

	// ListByCustomer retrieves all plans of a customer
	ListByCustomer(ctx context.Context, customerID string) ([]*Plan, error)
}

// InstallmentRepository defines the interface for installment persistence
type InstallmentRepository interface {
	// Get retrieves an installment by ID
	Get(ctx context.Context, id string) (*Installment, error)

	// GetByPlanAndNumber retrieves one installment of a plan by its
	// 1-based number
	GetByPlanAndNumber(ctx context.Context, planID string, number int) (*Installment, error)

	// Update updates an existing installment
	Update(ctx context.Context, inst *Installment) error

	// ListByPlan retrieves all installments of a plan ordered by number
	ListByPlan(ctx context.Context, planID string) ([]*Installment, error)

	// ListOverdueCandidates retrieves pending installments across all
	// tenants with a due date before asOf. Used by the overdue sweep.
	ListOverdueCandidates(ctx context.Context, asOf time.Time, limit, offset int) ([]*Installment, error)
}
