package recurring

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

// Definition is a standing instruction to generate invoices on a cadence.
// The scheduler owns all mutations of the cursor fields
// (NextOccurrenceDate, OccurrencesGenerated, RecurringStatus); the API
// layer only creates, pauses, resumes and cancels definitions.
type Definition struct {
	ID          string          `db:"id" json:"id"`
	CustomerID  string          `db:"customer_id" json:"customer_id"`
	Currency    string          `db:"currency" json:"currency"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description,omitempty"`

	Frequency     types.BillingFrequency `db:"frequency" json:"frequency"`
	IntervalValue int                    `db:"interval_value" json:"interval_value"`

	StartDate            time.Time  `db:"start_date" json:"start_date"`
	EndDate              *time.Time `db:"end_date" json:"end_date,omitempty"`
	MaxOccurrences       *int       `db:"max_occurrences" json:"max_occurrences,omitempty"`
	OccurrencesGenerated int        `db:"occurrences_generated" json:"occurrences_generated"`
	NextOccurrenceDate   time.Time  `db:"next_occurrence_date" json:"next_occurrence_date"`

	RecurringStatus types.RecurringStatus `db:"recurring_status" json:"recurring_status"`

	Metadata      types.Metadata `db:"metadata" json:"metadata,omitempty"`
	EnvironmentID string         `db:"environment_id" json:"environment_id"`

	types.BaseModel
}

// NewDefinition builds an active definition whose first occurrence fires
// on the start date.
func NewDefinition(ctx context.Context) *Definition {
	return &Definition{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECURRING),
		IntervalValue:   1,
		RecurringStatus: types.RecurringStatusActive,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
}

func (d *Definition) Validate() error {
	if d.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("Recurring definition must reference a customer").
			Mark(ierr.ErrValidation)
	}

	if err := d.Frequency.Validate(); err != nil {
		return err
	}

	if d.IntervalValue < 1 {
		return ierr.NewError("interval_value must be at least 1").
			WithHint("Billing interval must be a positive integer").
			WithReportableDetails(map[string]any{
				"interval_value": d.IntervalValue,
			}).
			Mark(ierr.ErrValidation)
	}

	if d.Amount.IsNegative() {
		return ierr.NewError("amount must be non negative").
			WithHint("Recurring amount must not be negative").
			Mark(ierr.ErrValidation)
	}

	if d.EndDate != nil && !d.EndDate.After(d.StartDate) {
		return ierr.NewError("end_date must be after start_date").
			WithHint("Please provide an end date after the start date").
			Mark(ierr.ErrValidation)
	}

	if d.MaxOccurrences != nil && *d.MaxOccurrences < 1 {
		return ierr.NewError("max_occurrences must be at least 1").
			WithHint("Maximum occurrence count must be a positive integer").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// IsDue reports whether the scheduler should fire this definition now
func (d *Definition) IsDue(now time.Time) bool {
	return d.RecurringStatus == types.RecurringStatusActive &&
		!d.NextOccurrenceDate.After(now)
}

// ShouldComplete applies the completion rule after an occurrence has been
// generated: the definition completes exactly when the occurrence count
// reaches max_occurrences, or when the newly computed next date is at or
// past end_date. Open-ended definitions (neither bound set) never
// auto-complete.
func (d *Definition) ShouldComplete(newCount int, newNextDate time.Time) bool {
	if d.MaxOccurrences != nil && newCount >= *d.MaxOccurrences {
		return true
	}
	if d.EndDate != nil && !newNextDate.Before(*d.EndDate) {
		return true
	}
	return false
}

// Occurrence is one concrete, dated invoice-generation attempt tied to a
// definition. The external invoice generation service moves it past
// "scheduled"; once paid or cancelled it is immutable.
type Occurrence struct {
	ID               string `db:"id" json:"id"`
	DefinitionID     string `db:"definition_id" json:"definition_id"`
	OccurrenceNumber int    `db:"occurrence_number" json:"occurrence_number"`

	ScheduledDate time.Time  `db:"scheduled_date" json:"scheduled_date"`
	GeneratedAt   *time.Time `db:"generated_at" json:"generated_at,omitempty"`
	SentAt        *time.Time `db:"sent_at" json:"sent_at,omitempty"`

	OccurrenceStatus types.OccurrenceStatus `db:"occurrence_status" json:"occurrence_status"`
	ErrorMessage     *string                `db:"error_message" json:"error_message,omitempty"`

	// InvoiceID is set once the generation service materializes the invoice
	InvoiceID *string `db:"invoice_id" json:"invoice_id,omitempty"`

	EnvironmentID string `db:"environment_id" json:"environment_id"`

	types.BaseModel
}

// NewOccurrence builds the next scheduled occurrence for a definition
func NewOccurrence(ctx context.Context, d *Definition) *Occurrence {
	return &Occurrence{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OCCURRENCE),
		DefinitionID:     d.ID,
		OccurrenceNumber: d.OccurrencesGenerated + 1,
		ScheduledDate:    d.NextOccurrenceDate,
		OccurrenceStatus: types.OccurrenceStatusScheduled,
		EnvironmentID:    d.EnvironmentID,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}

func (o *Occurrence) Validate() error {
	if o.DefinitionID == "" {
		return ierr.NewError("definition_id is required").
			WithHint("Occurrence must reference a recurring definition").
			Mark(ierr.ErrValidation)
	}
	if o.OccurrenceNumber < 1 {
		return ierr.NewError("occurrence_number must be at least 1").
			WithHint("Occurrence numbers are 1-based").
			Mark(ierr.ErrValidation)
	}
	return o.OccurrenceStatus.Validate()
}
