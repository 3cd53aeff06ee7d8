package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/ledgerflow/ledgerflow/internal/config"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/service"
)

// Runner drives the recurring billing pass and the overdue sweeps on
// the configured cron cadence. It is meant to run in a single replica;
// the /cron HTTP endpoints cover deployments that prefer an external
// scheduler.
type Runner struct {
	cron             *cron.Cron
	cfg              *config.Configuration
	schedulerService service.SchedulerService
	overdueService   service.OverdueService
	logger           *logger.Logger
}

// NewRunner creates a cron runner with the billing jobs registered per
// configuration
func NewRunner(
	cfg *config.Configuration,
	schedulerService service.SchedulerService,
	overdueService service.OverdueService,
	logger *logger.Logger,
) *Runner {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	return &Runner{
		cron:             c,
		cfg:              cfg,
		schedulerService: schedulerService,
		overdueService:   overdueService,
		logger:           logger,
	}
}

// Start registers the jobs and starts the cron loop
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc(r.cfg.Scheduler.RecurringCronSpec, r.runRecurring); err != nil {
		return err
	}
	if _, err := r.cron.AddFunc(r.cfg.Scheduler.OverdueCronSpec, r.runOverdueSweeps); err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Infow("started billing cron runner",
		"recurring_spec", r.cfg.Scheduler.RecurringCronSpec,
		"overdue_spec", r.cfg.Scheduler.OverdueCronSpec,
	)
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish or the
// context to expire
func (r *Runner) Stop(ctx context.Context) error {
	stopped := r.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) runRecurring() {
	ctx := context.Background()
	resp, err := r.schedulerService.ProcessDueDefinitions(ctx)
	if err != nil {
		r.logger.Errorw("recurring billing run failed", "error", err)
		return
	}

	r.logger.Infow("recurring billing run finished",
		"total_success", resp.TotalSuccess,
		"total_failed", resp.TotalFailed,
	)
}

func (r *Runner) runOverdueSweeps() {
	ctx := context.Background()

	invoices, err := r.overdueService.ProcessOverdueInvoices(ctx)
	if err != nil {
		r.logger.Errorw("overdue invoice sweep failed", "error", err)
	} else {
		r.logger.Infow("overdue invoice sweep finished",
			"total_processed", invoices.TotalProcessed,
			"total_failed", invoices.TotalFailed,
		)
	}

	installments, err := r.overdueService.ProcessOverdueInstallments(ctx)
	if err != nil {
		r.logger.Errorw("overdue installment sweep failed", "error", err)
		return
	}
	r.logger.Infow("overdue installment sweep finished",
		"total_processed", installments.TotalProcessed,
		"total_failed", installments.TotalFailed,
	)
}
