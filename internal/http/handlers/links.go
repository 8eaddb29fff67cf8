package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4csolutions/razorpay-payments/internal/http/middleware"
	"github.com/4csolutions/razorpay-payments/internal/http/validation"
	"github.com/4csolutions/razorpay-payments/internal/modules/payments"
	"github.com/4csolutions/razorpay-payments/internal/shared/apperr"
)

type LinkHandler struct {
	Logger *slog.Logger
	Svc    *payments.LinkService
}

func NewLinkHandler(logger *slog.Logger, svc *payments.LinkService) *LinkHandler {
	return &LinkHandler{Logger: logger, Svc: svc}
}

// POST /invoices/:name/payment-link
func (h *LinkHandler) Create(c *gin.Context) {
	link, err := h.Svc.CreateForInvoice(c.Request.Context(), c.Param("name"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"link_id":   link.ID,
		"short_url": link.ShortURL,
	})
}

type resendRequest struct {
	Via string `json:"via" binding:"omitempty,oneof=sms email"`
}

// POST /invoices/:name/payment-link/resend
func (h *LinkHandler) Resend(c *gin.Context) {
	var req resendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.Fail(c, apperr.InvalidErr("Invalid resend request.", validation.FromBindError(err, &req)))
			return
		}
	}
	if req.Via == "" {
		req.Via = "sms"
	}

	if err := h.Svc.Resend(c.Request.Context(), c.Param("name"), req.Via); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "via": req.Via})
}
