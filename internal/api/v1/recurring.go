package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	"github.com/ledgerflow/ledgerflow/internal/domain/recurring"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/service"
)

type RecurringHandler struct {
	service service.RecurringService
	log     *logger.Logger
}

func NewRecurringHandler(service service.RecurringService, log *logger.Logger) *RecurringHandler {
	return &RecurringHandler{service: service, log: log}
}

func (h *RecurringHandler) CreateRecurring(c *gin.Context) {
	var req dto.CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateRecurring(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create recurring definition", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *RecurringHandler) GetRecurring(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Recurring definition ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetRecurring(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get recurring definition", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RecurringHandler) ListRecurring(c *gin.Context) {
	var filter recurring.DefinitionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListRecurring(c.Request.Context(), &filter)
	if err != nil {
		h.log.Error("Failed to list recurring definitions", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RecurringHandler) PauseRecurring(c *gin.Context) {
	resp, err := h.service.PauseRecurring(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Failed to pause recurring definition", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RecurringHandler) ResumeRecurring(c *gin.Context) {
	resp, err := h.service.ResumeRecurring(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Failed to resume recurring definition", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RecurringHandler) CancelRecurring(c *gin.Context) {
	resp, err := h.service.CancelRecurring(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Failed to cancel recurring definition", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RecurringHandler) ListOccurrences(c *gin.Context) {
	resp, err := h.service.ListOccurrences(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Failed to list occurrences", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
