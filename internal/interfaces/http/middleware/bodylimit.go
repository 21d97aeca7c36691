package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/repairdesk/backend/internal/interfaces/http/dto"
)

// DefaultBodyLimit caps ledger request bodies at 1 MiB
const DefaultBodyLimit int64 = 1 << 20

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.CodeRequestTooLarge, "Request body exceeds maximum allowed size", c.GetString(requestIDGinKey)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
