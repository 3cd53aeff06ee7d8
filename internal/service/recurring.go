package service

import (
	"context"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/types"
	"github.com/samber/lo"
)

// RecurringService manages the lifecycle of recurring billing definitions.
// The scheduler cursor fields are owned by SchedulerService; this service
// only creates definitions and moves them between lifecycle states.
type RecurringService interface {
	CreateRecurring(ctx context.Context, req *dto.CreateRecurringRequest) (*dto.RecurringResponse, error)
	GetRecurring(ctx context.Context, id string) (*dto.RecurringResponse, error)
	ListRecurring(ctx context.Context, filter *recurring.DefinitionFilter) (*dto.ListRecurringResponse, error)
	PauseRecurring(ctx context.Context, id string) (*dto.RecurringResponse, error)
	ResumeRecurring(ctx context.Context, id string) (*dto.RecurringResponse, error)
	CancelRecurring(ctx context.Context, id string) (*dto.RecurringResponse, error)
	ListOccurrences(ctx context.Context, definitionID string) ([]*dto.OccurrenceResponse, error)
}

type recurringService struct {
	ServiceParams
}

func NewRecurringService(params ServiceParams) RecurringService {
	return &recurringService{
		ServiceParams: params,
	}
}

func (s *recurringService) CreateRecurring(ctx context.Context, req *dto.CreateRecurringRequest) (*dto.RecurringResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	def := req.ToDefinition(ctx)
	if err := def.Validate(); err != nil {
		return nil, err
	}

	if err := s.RecurringRepo.Create(ctx, def); err != nil {
		return nil, err
	}

	s.Logger.Infow("created recurring definition",
		"recurring_id", def.ID,
		"customer_id", def.CustomerID,
		"frequency", def.Frequency,
		"next_occurrence_date", def.NextOccurrenceDate,
	)

	return &dto.RecurringResponse{Definition: def}, nil
}

func (s *recurringService) GetRecurring(ctx context.Context, id string) (*dto.RecurringResponse, error) {
	def, err := s.RecurringRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.RecurringResponse{Definition: def}, nil
}

func (s *recurringService) ListRecurring(ctx context.Context, filter *recurring.DefinitionFilter) (*dto.ListRecurringResponse, error) {
	if filter == nil {
		filter = &recurring.DefinitionFilter{QueryFilter: types.NewDefaultQueryFilter()}
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.QueryFilter.Validate(); err != nil {
		return nil, err
	}

	defs, err := s.RecurringRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.RecurringRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListRecurringResponse{
		Items: lo.Map(defs, func(def *recurring.Definition, _ int) *dto.RecurringResponse {
			return &dto.RecurringResponse{Definition: def}
		}),
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *recurringService) PauseRecurring(ctx context.Context, id string) (*dto.RecurringResponse, error) {
	def, err := s.RecurringRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if def.RecurringStatus != types.RecurringStatusActive {
		return nil, ierr.NewError("only active definitions can be paused").
			WithHint("The recurring definition is not active").
			WithReportableDetails(map[string]any{
				"recurring_id": id,
				"status":       def.RecurringStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	def.RecurringStatus = types.RecurringStatusPaused
	if err := s.RecurringRepo.Update(ctx, def); err != nil {
		return nil, err
	}

	s.Logger.Infow("paused recurring definition", "recurring_id", id)
	return &dto.RecurringResponse{Definition: def}, nil
}

func (s *recurringService) ResumeRecurring(ctx context.Context, id string) (*dto.RecurringResponse, error) {
	def, err := s.RecurringRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if def.RecurringStatus != types.RecurringStatusPaused {
		return nil, ierr.NewError("only paused definitions can be resumed").
			WithHint("The recurring definition is not paused").
			WithReportableDetails(map[string]any{
				"recurring_id": id,
				"status":       def.RecurringStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	def.RecurringStatus = types.RecurringStatusActive
	if err := s.RecurringRepo.Update(ctx, def); err != nil {
		return nil, err
	}

	s.Logger.Infow("resumed recurring definition", "recurring_id", id)
	return &dto.RecurringResponse{Definition: def}, nil
}

func (s *recurringService) CancelRecurring(ctx context.Context, id string) (*dto.RecurringResponse, error) {
	def, err := s.RecurringRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if def.RecurringStatus.IsTerminal() {
		return nil, ierr.NewError("definition is already in a terminal state").
			WithHint("Completed, cancelled or expired definitions cannot be cancelled").
			WithReportableDetails(map[string]any{
				"recurring_id": id,
				"status":       def.RecurringStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	def.RecurringStatus = types.RecurringStatusCancelled
	if err := s.RecurringRepo.Update(ctx, def); err != nil {
		return nil, err
	}

	s.Logger.Infow("cancelled recurring definition", "recurring_id", id)
	return &dto.RecurringResponse{Definition: def}, nil
}

func (s *recurringService) ListOccurrences(ctx context.Context, definitionID string) ([]*dto.OccurrenceResponse, error) {
	// Ensure the definition exists and belongs to the tenant before
	// exposing its occurrences.
	if _, err := s.RecurringRepo.Get(ctx, definitionID); err != nil {
		return nil, err
	}

	occurrences, err := s.OccurrenceRepo.ListByDefinition(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	return lo.Map(occurrences, func(occ *recurring.Occurrence, _ int) *dto.OccurrenceResponse {
		return &dto.OccurrenceResponse{Occurrence: occ}
	}), nil
}
