package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/ledgerflow/ledgerflow/internal/api"
	"github.com/ledgerflow/ledgerflow/internal/api/cron"
	v1 "github.com/ledgerflow/ledgerflow/internal/api/v1"
	"github.com/ledgerflow/ledgerflow/internal/config"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/postgres"
	"github.com/ledgerflow/ledgerflow/internal/repository"
	"github.com/ledgerflow/ledgerflow/internal/scheduler"
	"github.com/ledgerflow/ledgerflow/internal/service"
	"github.com/ledgerflow/ledgerflow/internal/types"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewDB,
			providePostgresClient,

			// Repositories
			repository.NewRecurringRepository,
			repository.NewOccurrenceRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
			repository.NewPaymentPlanRepository,
			repository.NewInstallmentRepository,

			// Services
			service.NewServiceParams,
			service.NewRecurringService,
			service.NewSchedulerService,
			service.NewInvoiceService,
			service.NewPaymentService,
			service.NewPaymentPlanService,
			service.NewOverdueService,

			// Cron runner
			scheduler.NewRunner,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func providePostgresClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideHandlers(
	logger *logger.Logger,
	recurringService service.RecurringService,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	paymentPlanService service.PaymentPlanService,
	schedulerService service.SchedulerService,
	overdueService service.OverdueService,
) api.Handlers {
	return api.Handlers{
		Health:      v1.NewHealthHandler(),
		Recurring:   v1.NewRecurringHandler(recurringService, logger),
		Invoice:     v1.NewInvoiceHandler(invoiceService, logger),
		Payment:     v1.NewPaymentHandler(paymentService, logger),
		PaymentPlan: v1.NewPaymentPlanHandler(paymentPlanService, logger),
		CronBilling: cron.NewBillingHandler(schedulerService, overdueService, logger),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	runner *scheduler.Runner,
	db *postgres.DB,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeProd:
		startAPIServer(lc, r, cfg, log)
		if cfg.Scheduler.Enabled {
			startCronRunner(lc, runner, log)
		}
	case types.ModeCron:
		startCronRunner(lc, runner, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return nil
		},
	})
}

func startCronRunner(
	lc fx.Lifecycle,
	runner *scheduler.Runner,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return runner.Start()
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping cron runner")
			return runner.Stop(ctx)
		},
	})
}
