package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	"github.com/ledgerflow/ledgerflow/internal/domain/invoice"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/service"
)

type InvoiceHandler struct {
	service service.InvoiceService
	log     *logger.Logger
}

func NewInvoiceHandler(service service.InvoiceService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{service: service, log: log}
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filter invoice.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListInvoices(c.Request.Context(), &filter)
	if err != nil {
		h.log.Error("Failed to list invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *InvoiceHandler) FinalizeInvoice(c *gin.Context) {
	resp, err := h.service.FinalizeInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Failed to finalize invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecalculateBalance re-derives the invoice's payment summary on demand.
// Normally the payment flow keeps it consistent; this endpoint exists
// for repair after manual data fixes.
func (h *InvoiceHandler) RecalculateBalance(c *gin.Context) {
	resp, err := h.service.RecalculateBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Failed to recalculate invoice balance", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
