package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"

	"github.com/4csolutions/razorpay-payments/internal/shared/logging"
)

const HeaderRequestID = "X-Request-ID"

// RequestID honors an inbound X-Request-ID or mints one, echoes it on
// the response, and plants it on the request context so every slog
// *Context call downstream carries it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = newRequestID()
		}

		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), rid))

		c.Next()
	}
}

// GetRequestID returns the id planted by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return logging.RequestID(c.Request.Context())
}

func newRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "rid_fallback"
	}
	return hex.EncodeToString(b)
}
