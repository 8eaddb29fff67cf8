package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/4csolutions/razorpay-payments/internal/shared/apperr"
)

// Recovery converts a handler panic into a recorded internal error for
// ErrorHandler to render. A panic caused by the client dropping the
// connection is not a server fault and gets no response at all.
func Recovery(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			if clientGone(recovered) {
				l.WarnContext(c.Request.Context(), "client connection lost",
					"method", c.Request.Method, "path", c.Request.URL.Path)
				c.Abort()
				return
			}

			l.LogAttrs(c.Request.Context(), slog.LevelError, "panic_recovered",
				slog.Any("panic", recovered),
				slog.String("stack", string(debug.Stack())),
			)

			Fail(c, apperr.Wrap(fmt.Errorf("panic: %v", recovered)))
		}()

		c.Next()
	}
}

// clientGone reports whether the panic is net/http surfacing a write
// to a closed client connection.
func clientGone(recovered any) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}
	var op *net.OpError
	if !errors.As(err, &op) {
		return false
	}
	var sys *os.SyscallError
	if !errors.As(op.Err, &sys) {
		return false
	}
	msg := strings.ToLower(sys.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
