package types

import (
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/samber/lo"
)

// BillingFrequency defines the calendar cadence of a recurring definition
// or a payment plan. The values match the enum stored in the database.
type BillingFrequency string

const (
	BillingFrequencyDaily        BillingFrequency = "daily"
	BillingFrequencyWeekly       BillingFrequency = "weekly"
	BillingFrequencyBiweekly     BillingFrequency = "biweekly"
	BillingFrequencyMonthly      BillingFrequency = "monthly"
	BillingFrequencyQuarterly    BillingFrequency = "quarterly"
	BillingFrequencySemiAnnually BillingFrequency = "semi_annually"
	BillingFrequencyAnnually     BillingFrequency = "annually"
)

func (f BillingFrequency) String() string {
	return string(f)
}

func (f BillingFrequency) Validate() error {
	allowed := []BillingFrequency{
		BillingFrequencyDaily,
		BillingFrequencyWeekly,
		BillingFrequencyBiweekly,
		BillingFrequencyMonthly,
		BillingFrequencyQuarterly,
		BillingFrequencySemiAnnually,
		BillingFrequencyAnnually,
	}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid billing frequency").
			WithHint("Please provide a valid billing frequency").
			WithReportableDetails(map[string]any{
				"allowed":        allowed,
				"provided_value": f,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RecurringStatus represents the lifecycle state of a recurring definition
type RecurringStatus string

const (
	RecurringStatusActive    RecurringStatus = "active"
	RecurringStatusPaused    RecurringStatus = "paused"
	RecurringStatusCancelled RecurringStatus = "cancelled"
	RecurringStatusCompleted RecurringStatus = "completed"
	RecurringStatusExpired   RecurringStatus = "expired"
)

func (s RecurringStatus) String() string {
	return string(s)
}

func (s RecurringStatus) Validate() error {
	allowed := []RecurringStatus{
		RecurringStatusActive,
		RecurringStatusPaused,
		RecurringStatusCancelled,
		RecurringStatusCompleted,
		RecurringStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid recurring status").
			WithHint("Please provide a valid recurring status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether the definition can never fire again
func (s RecurringStatus) IsTerminal() bool {
	return s == RecurringStatusCancelled ||
		s == RecurringStatusCompleted ||
		s == RecurringStatusExpired
}

// OccurrenceStatus represents the state of one dated invoice-generation attempt
type OccurrenceStatus string

const (
	OccurrenceStatusScheduled OccurrenceStatus = "scheduled"
	OccurrenceStatusGenerated OccurrenceStatus = "generated"
	OccurrenceStatusSent      OccurrenceStatus = "sent"
	OccurrenceStatusPaid      OccurrenceStatus = "paid"
	OccurrenceStatusFailed    OccurrenceStatus = "failed"
	OccurrenceStatusCancelled OccurrenceStatus = "cancelled"
)

func (s OccurrenceStatus) String() string {
	return string(s)
}

func (s OccurrenceStatus) Validate() error {
	allowed := []OccurrenceStatus{
		OccurrenceStatusScheduled,
		OccurrenceStatusGenerated,
		OccurrenceStatusSent,
		OccurrenceStatusPaid,
		OccurrenceStatusFailed,
		OccurrenceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid occurrence status").
			WithHint("Please provide a valid occurrence status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsImmutable reports whether the occurrence may no longer be modified
func (s OccurrenceStatus) IsImmutable() bool {
	return s == OccurrenceStatusPaid || s == OccurrenceStatusCancelled
}

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusViewed    InvoiceStatus = "viewed"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusViewed,
		InvoiceStatusPartial,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// EligibleForOverdue reports whether the sweep may flip this status to overdue
func (s InvoiceStatus) EligibleForOverdue() bool {
	return s == InvoiceStatusSent ||
		s == InvoiceStatusViewed ||
		s == InvoiceStatusPartial
}

// PaymentStatus represents the status of a payment record
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusSucceeded,
		PaymentStatusFailed,
		PaymentStatusRefunded,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment status").
			WithHint("Please provide a valid payment status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentMethodType defines how a payment was made
type PaymentMethodType string

const (
	PaymentMethodTypeCard         PaymentMethodType = "card"
	PaymentMethodTypeBankTransfer PaymentMethodType = "bank_transfer"
	PaymentMethodTypeCash         PaymentMethodType = "cash"
	PaymentMethodTypeCheck        PaymentMethodType = "check"
	PaymentMethodTypeOffline      PaymentMethodType = "offline"
)

func (t PaymentMethodType) String() string {
	return string(t)
}

func (t PaymentMethodType) Validate() error {
	allowed := []PaymentMethodType{
		PaymentMethodTypeCard,
		PaymentMethodTypeBankTransfer,
		PaymentMethodTypeCash,
		PaymentMethodTypeCheck,
		PaymentMethodTypeOffline,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid payment method type").
			WithHint("Please provide a valid payment method type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentPlanStatus represents the lifecycle state of an amortized payment plan
type PaymentPlanStatus string

const (
	PaymentPlanStatusActive    PaymentPlanStatus = "active"
	PaymentPlanStatusCompleted PaymentPlanStatus = "completed"
	PaymentPlanStatusDefaulted PaymentPlanStatus = "defaulted"
	PaymentPlanStatusCancelled PaymentPlanStatus = "cancelled"
)

func (s PaymentPlanStatus) String() string {
	return string(s)
}

func (s PaymentPlanStatus) Validate() error {
	allowed := []PaymentPlanStatus{
		PaymentPlanStatusActive,
		PaymentPlanStatusCompleted,
		PaymentPlanStatusDefaulted,
		PaymentPlanStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment plan status").
			WithHint("Please provide a valid payment plan status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InstallmentStatus represents the state of one payment-plan installment
type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "pending"
	InstallmentStatusPaid      InstallmentStatus = "paid"
	InstallmentStatusOverdue   InstallmentStatus = "overdue"
	InstallmentStatusCancelled InstallmentStatus = "cancelled"
)

func (s InstallmentStatus) String() string {
	return string(s)
}

func (s InstallmentStatus) Validate() error {
	allowed := []InstallmentStatus{
		InstallmentStatusPending,
		InstallmentStatusPaid,
		InstallmentStatusOverdue,
		InstallmentStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid installment status").
			WithHint("Please provide a valid installment status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
