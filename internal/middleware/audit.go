package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/pkg/middleware/requestid"
)

// Audit logs a panel action once the request succeeded. The journal backend
// keeps the authoritative activity log; this line ties gateway requests to it.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			return
		}
		fields := []zap.Field{
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.String("target_id", c.Param("id")),
			zap.Int("status", status),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", requestid.Value(c)),
			zap.Duration("latency", time.Since(start)),
		}
		if sess, ok := session.From(c); ok {
			fields = append(fields, zap.String("actor", string(sess.UserID)), zap.String("role", string(sess.Role)))
		}
		logger.Info("panel action", fields...)
	}
}
