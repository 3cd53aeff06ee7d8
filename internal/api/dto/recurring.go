package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// CreateRecurringRequest represents a request to create a recurring definition
type CreateRecurringRequest struct {
	CustomerID     string                 `json:"customer_id" binding:"required"`
	Currency       string                 `json:"currency" binding:"required"`
	Amount         decimal.Decimal        `json:"amount" binding:"required"`
	Description    string                 `json:"description,omitempty"`
	Frequency      types.BillingFrequency `json:"frequency" binding:"required"`
	IntervalValue  int                    `json:"interval_value,omitempty"`
	StartDate      time.Time              `json:"start_date" binding:"required"`
	EndDate        *time.Time             `json:"end_date,omitempty"`
	MaxOccurrences *int                   `json:"max_occurrences,omitempty"`
	Metadata       types.Metadata         `json:"metadata,omitempty"`
}

func (r *CreateRecurringRequest) Validate() error {
	if err := r.Frequency.Validate(); err != nil {
		return err
	}
	if r.Amount.IsNegative() {
		return ierr.NewError("amount must be non negative").
			WithHint("Recurring amount must not be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToDefinition converts the request to a domain definition. The first
// occurrence fires on the start date.
func (r *CreateRecurringRequest) ToDefinition(ctx context.Context) *recurring.Definition {
	def := recurring.NewDefinition(ctx)
	def.CustomerID = r.CustomerID
	def.Currency = r.Currency
	def.Amount = r.Amount
	def.Description = r.Description
	def.Frequency = r.Frequency
	if r.IntervalValue > 0 {
		def.IntervalValue = r.IntervalValue
	}
	def.StartDate = r.StartDate
	def.EndDate = r.EndDate
	def.MaxOccurrences = r.MaxOccurrences
	def.NextOccurrenceDate = r.StartDate
	def.Metadata = r.Metadata
	def.EnvironmentID = types.GetEnvironmentID(ctx)
	return def
}

// RecurringResponse represents a recurring definition in API responses
type RecurringResponse struct {
	*recurring.Definition
}

// ListRecurringResponse represents a paginated list of recurring definitions
type ListRecurringResponse struct {
	Items      []*RecurringResponse     `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// OccurrenceResponse represents an occurrence in API responses
type OccurrenceResponse struct {
	*recurring.Occurrence
}

// RecurringRunResponse is the report of one scheduler pass
type RecurringRunResponse struct {
	Items        []*RecurringRunResponseItem `json:"items"`
	TotalSuccess int                         `json:"total_success"`
	TotalFailed  int                         `json:"total_failed"`
	StartAt      time.Time                   `json:"start_at"`
}

// RecurringRunResponseItem is the outcome of one definition in a run
type RecurringRunResponseItem struct {
	DefinitionID     string     `json:"definition_id"`
	OccurrenceID     string     `json:"occurrence_id,omitempty"`
	OccurrenceNumber int        `json:"occurrence_number,omitempty"`
	ScheduledDate    *time.Time `json:"scheduled_date,omitempty"`
	Completed        bool       `json:"completed,omitempty"`
	Success          bool       `json:"success"`
	Error            string     `json:"error,omitempty"`
}

// SweepRunResponse is the report of one overdue sweep pass
type SweepRunResponse struct {
	TotalProcessed int       `json:"total_processed"`
	TotalFailed    int       `json:"total_failed"`
	StartAt        time.Time `json:"start_at"`
}
