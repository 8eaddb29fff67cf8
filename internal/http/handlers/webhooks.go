package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4csolutions/razorpay-payments/internal/modules/payments"
)

type WebhookHandler struct {
	Logger     *slog.Logger
	Reconciler *payments.Reconciler
}

func NewWebhookHandler(logger *slog.Logger, r *payments.Reconciler) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Reconciler: r}
}

// POST /webhooks/razorpay
// The raw body is handed to the reconciler untouched; signature
// verification must see the exact bytes the provider signed. A missing
// signature header is the only hard rejection — every processed
// outcome answers 200 with a plain-text ack so the provider stops
// retrying events that will never succeed.
func (h *WebhookHandler) Handle(c *gin.Context) {
	sig := c.GetHeader(payments.SignatureHeader)
	if sig == "" {
		c.String(http.StatusBadRequest, "Missing signature")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Logger.Error("webhook body read failed", "err", err)
		c.String(http.StatusOK, string(payments.AckFailed))
		return
	}

	ack := h.Reconciler.Receive(c.Request.Context(), body, sig)
	c.String(http.StatusOK, string(ack))
}
