package service

import (
	"context"
	"time"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	"github.com/ledgerflow/ledgerflow/internal/types"
	"github.com/samber/lo"
)

const defaultSchedulerBatchSize = 100

// SchedulerService advances recurring definitions that are due. Each
// definition is processed in its own transaction, so one bad row never
// blocks the rest of the batch. The occurrence insert and the cursor
// advancement commit together; the unique (definition_id,
// occurrence_number) index makes a crashed-and-retried run insert-once.
type SchedulerService interface {
	ProcessDueDefinitions(ctx context.Context) (*dto.RecurringRunResponse, error)
}

type schedulerService struct {
	ServiceParams
}

func NewSchedulerService(params ServiceParams) SchedulerService {
	return &schedulerService{
		ServiceParams: params,
	}
}

func (s *schedulerService) ProcessDueDefinitions(ctx context.Context) (*dto.RecurringRunResponse, error) {
	now := time.Now().UTC()
	response := &dto.RecurringRunResponse{
		Items:   make([]*dto.RecurringRunResponseItem, 0),
		StartAt: now,
	}

	batchSize := s.Config.Scheduler.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSchedulerBatchSize
	}

	// Definitions that advance successfully stop matching the due filter,
	// so the offset only has to skip past rows that failed in earlier
	// batches of this run.
	offset := 0
	for {
		defs, err := s.RecurringRepo.ListDue(ctx, now, batchSize, offset)
		if err != nil {
			s.Logger.Errorw("failed to list due recurring definitions",
				"error", err,
				"as_of", now,
			)
			return nil, err
		}
		if len(defs) == 0 {
			break
		}

		for _, def := range defs {
			item := s.processDefinition(ctx, def, now)
			response.Items = append(response.Items, item)
			if item.Success {
				response.TotalSuccess++
			} else {
				response.TotalFailed++
				offset++
			}
		}

		if len(defs) < batchSize {
			break
		}
	}

	s.Logger.Infow("completed recurring billing run",
		"total_success", response.TotalSuccess,
		"total_failed", response.TotalFailed,
		"start_at", response.StartAt,
	)

	return response, nil
}

// processDefinition fires one due definition: it inserts the next
// occurrence and advances the schedule cursor atomically.
func (s *schedulerService) processDefinition(ctx context.Context, def *recurring.Definition, now time.Time) *dto.RecurringRunResponseItem {
	item := &dto.RecurringRunResponseItem{
		DefinitionID: def.ID,
	}

	// The batch runs across tenants; downstream writes must carry the
	// owning tenant's identity.
	defCtx := types.SetTenantID(ctx, def.TenantID)
	defCtx = types.SetEnvironmentID(defCtx, def.EnvironmentID)
	defCtx = types.SetUserID(defCtx, types.DefaultUserID)

	if err := def.Frequency.Validate(); err != nil {
		// The date math treats unknown frequencies as monthly. Keep the
		// definition advancing but make the bad row visible.
		s.Logger.Warnw("unknown billing frequency, falling back to monthly",
			"recurring_id", def.ID,
			"frequency", def.Frequency,
		)
	}

	err := s.DB.WithTx(defCtx, func(txCtx context.Context) error {
		occ := recurring.NewOccurrence(txCtx, def)
		if err := s.OccurrenceRepo.Create(txCtx, occ); err != nil {
			return err
		}

		nextDate, err := types.NextOccurrenceDate(def.NextOccurrenceDate, def.IntervalValue, def.Frequency)
		if err != nil {
			return err
		}

		def.OccurrencesGenerated++
		def.NextOccurrenceDate = nextDate
		if def.ShouldComplete(def.OccurrencesGenerated, nextDate) {
			def.RecurringStatus = types.RecurringStatusCompleted
		}

		if err := s.RecurringRepo.Update(txCtx, def); err != nil {
			return err
		}

		item.OccurrenceID = occ.ID
		item.OccurrenceNumber = occ.OccurrenceNumber
		item.ScheduledDate = lo.ToPtr(occ.ScheduledDate)
		item.Completed = def.RecurringStatus == types.RecurringStatusCompleted
		return nil
	})
	if err != nil {
		s.Logger.Errorw("failed to process recurring definition",
			"recurring_id", def.ID,
			"tenant_id", def.TenantID,
			"error", err,
		)
		item.Success = false
		item.Error = err.Error()
		return item
	}

	s.Logger.Debugw("generated recurring occurrence",
		"recurring_id", def.ID,
		"occurrence_id", item.OccurrenceID,
		"occurrence_number", item.OccurrenceNumber,
		"next_occurrence_date", def.NextOccurrenceDate,
		"completed", item.Completed,
	)

	item.Success = true
	return item
}
