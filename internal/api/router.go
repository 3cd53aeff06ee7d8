package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ledgerflow/ledgerflow/internal/api/cron"
	v1 "github.com/ledgerflow/ledgerflow/internal/api/v1"
	"github.com/ledgerflow/ledgerflow/internal/rest/middleware"
)

type Handlers struct {
	Health      *v1.HealthHandler
	Recurring   *v1.RecurringHandler
	Invoice     *v1.InvoiceHandler
	Payment     *v1.PaymentHandler
	PaymentPlan *v1.PaymentPlanHandler
	CronBilling *cron.BillingHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.TenantMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	cronGroup := router.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	recurring := router.Group("/recurring")
	{
		recurring.POST("", handlers.Recurring.CreateRecurring)
		recurring.GET("", handlers.Recurring.ListRecurring)
		recurring.GET("/:id", handlers.Recurring.GetRecurring)
		recurring.POST("/:id/pause", handlers.Recurring.PauseRecurring)
		recurring.POST("/:id/resume", handlers.Recurring.ResumeRecurring)
		recurring.POST("/:id/cancel", handlers.Recurring.CancelRecurring)
		recurring.GET("/:id/occurrences", handlers.Recurring.ListOccurrences)
	}

	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/finalize", handlers.Invoice.FinalizeInvoice)
		invoices.POST("/:id/recalculate", handlers.Invoice.RecalculateBalance)
	}

	payments := router.Group("/payments")
	{
		payments.POST("", handlers.Payment.RecordPayment)
		payments.GET("/:id", handlers.Payment.GetPayment)
		payments.POST("/:id/refund", handlers.Payment.RefundPayment)
		payments.DELETE("/:id", handlers.Payment.DeletePayment)
	}

	plans := router.Group("/payment-plans")
	{
		plans.POST("", handlers.PaymentPlan.CreatePlan)
		plans.GET("", handlers.PaymentPlan.ListPlansByCustomer)
		plans.GET("/:id", handlers.PaymentPlan.GetPlan)
		plans.POST("/:id/installments/:number/pay", handlers.PaymentPlan.ApplyInstallmentPayment)
		plans.POST("/:id/cancel", handlers.PaymentPlan.CancelPlan)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	billing := router.Group("/billing")
	{
		billing.POST("/recurring", handlers.CronBilling.ProcessDueDefinitions)
		billing.POST("/overdue/invoices", handlers.CronBilling.ProcessOverdueInvoices)
		billing.POST("/overdue/installments", handlers.CronBilling.ProcessOverdueInstallments)
	}
}
