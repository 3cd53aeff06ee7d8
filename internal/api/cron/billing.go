package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/service"
)

// BillingHandler exposes the scheduled billing passes as HTTP endpoints
// so an external cron can drive them instead of the in-process runner.
type BillingHandler struct {
	schedulerService service.SchedulerService
	overdueService   service.OverdueService
	logger           *logger.Logger
}

// NewBillingHandler creates a new billing cron handler
func NewBillingHandler(
	schedulerService service.SchedulerService,
	overdueService service.OverdueService,
	logger *logger.Logger,
) *BillingHandler {
	return &BillingHandler{
		schedulerService: schedulerService,
		overdueService:   overdueService,
		logger:           logger,
	}
}

func (h *BillingHandler) ProcessDueDefinitions(c *gin.Context) {
	ctx := c.Request.Context()
	response, err := h.schedulerService.ProcessDueDefinitions(ctx)
	if err != nil {
		h.logger.Errorw("failed to process due recurring definitions",
			"error", err)

		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *BillingHandler) ProcessOverdueInvoices(c *gin.Context) {
	ctx := c.Request.Context()
	response, err := h.overdueService.ProcessOverdueInvoices(ctx)
	if err != nil {
		h.logger.Errorw("failed to process overdue invoices",
			"error", err)

		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *BillingHandler) ProcessOverdueInstallments(c *gin.Context) {
	ctx := c.Request.Context()
	response, err := h.overdueService.ProcessOverdueInstallments(ctx)
	if err != nil {
		h.logger.Errorw("failed to process overdue installments",
			"error", err)

		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
