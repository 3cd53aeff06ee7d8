package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ledgerflow/ledgerflow/internal/api/dto"
	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
	"github.com/ledgerflow/ledgerflow/internal/logger"
	"github.com/ledgerflow/ledgerflow/internal/service"
)

type PaymentPlanHandler struct {
	service service.PaymentPlanService
	log     *logger.Logger
}

func NewPaymentPlanHandler(service service.PaymentPlanService, log *logger.Logger) *PaymentPlanHandler {
	return &PaymentPlanHandler{service: service, log: log}
}

func (h *PaymentPlanHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePaymentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create payment plan", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PaymentPlanHandler) GetPlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Payment plan ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetPlan(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get payment plan", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentPlanHandler) ListPlansByCustomer(c *gin.Context) {
	customerID := c.Query("customer_id")
	if customerID == "" {
		c.Error(ierr.NewError("customer_id is required").
			WithHint("Please provide a customer ID").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPlansByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.log.Error("Failed to list payment plans", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentPlanHandler) ApplyInstallmentPayment(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		c.Error(ierr.NewError("invalid installment number").
			WithHint("Installment numbers are positive integers").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.ApplyInstallmentPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ApplyInstallmentPayment(c.Request.Context(), c.Param("id"), number, &req)
	if err != nil {
		h.log.Error("Failed to apply installment payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentPlanHandler) CancelPlan(c *gin.Context) {
	resp, err := h.service.CancelPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Failed to cancel payment plan", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
