package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns the otelgin server span middleware followed by a handler
// that, once the request is done, adds the request ID and caller to that span.
// 5xx responses mark the span as failed.
func Tracing(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), spanAttributes}
}

func spanAttributes(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	if id := c.GetString(requestIDGinKey); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if p, ok := GetPrincipal(c); ok {
		span.SetAttributes(
			attribute.String("tenant_id", p.TenantID.String()),
			attribute.String("user_id", p.UserID.String()),
		)
	}
	if status := c.Writer.Status(); status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
