package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4csolutions/razorpay-payments/internal/http/handlers"
	"github.com/4csolutions/razorpay-payments/internal/http/middleware"
)

func NewRouter(logger *slog.Logger, webhooks *handlers.WebhookHandler, links *handlers.LinkHandler) *gin.Engine {
	r := gin.New()

	// ErrorHandler must wrap Recovery: a recovered panic only records
	// the error, and the rendering happens on the way back out.
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Recovery(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/webhooks/razorpay", webhooks.Handle)

	inv := r.Group("/invoices/:name")
	{
		inv.POST("/payment-link", links.Create)
		inv.POST("/payment-link/resend", links.Resend)
	}

	return r
}
