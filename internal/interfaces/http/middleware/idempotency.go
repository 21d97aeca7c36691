package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/repairdesk/backend/internal/infrastructure/logger"
	"github.com/repairdesk/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength   = 255
)

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store shared.IdempotencyStore
	// TTL is how long a completed response is replayed
	TTL time.Duration
	// PendingTTL bounds how long an unfinished request holds its key
	PendingTTL time.Duration
	Logger     *zap.Logger
}

// Idempotency makes a mutating endpoint safe to retry. A request carrying an
// Idempotency-Key header runs at most once per tenant, path and key: repeats
// get the stored response, and a repeat that arrives while the first request
// is still running gets 409. Requests without the header pass through.
// 5xx outcomes release the key so the client can retry.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyConfig().TTL
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 2 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		clientKey := c.GetHeader(IdempotencyKeyHeader)
		if clientKey == "" || cfg.Store == nil {
			c.Next()
			return
		}
		requestID := c.GetString(requestIDGinKey)
		if len(clientKey) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.CodeBadRequest, "Idempotency-Key is too long", requestID))
			return
		}

		tenant := ""
		if p, ok := GetPrincipal(c); ok {
			tenant = p.TenantID.String()
		}
		key := tenant + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + clientKey
		ctx := c.Request.Context()
		log := logger.For(ctx, cfg.Logger)

		reserved, stored, err := cfg.Store.Reserve(ctx, key, cfg.PendingTTL)
		if err != nil {
			log.Error("Idempotency store unavailable", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				dto.NewErrorResponse(dto.CodeServiceUnavailable, "Idempotency store unavailable, retry later", requestID))
			return
		}
		if !reserved {
			if stored == nil {
				c.AbortWithStatusJSON(http.StatusConflict,
					dto.NewErrorResponse(dto.CodeIdempotencyInFlight, "A request with this Idempotency-Key is still being processed", requestID))
				return
			}
			log.Debug("Replaying stored response", zap.String("idempotency_key", clientKey))
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		// the client may have gone away; the outcome must still be recorded
		bg := context.WithoutCancel(ctx)
		status := rec.Status()
		if status >= http.StatusInternalServerError {
			if err := cfg.Store.Release(bg, key); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
			return
		}
		resp := shared.StoredResponse{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if err := cfg.Store.Complete(bg, key, resp, cfg.TTL); err != nil {
			log.Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

// recordingWriter copies the response body while writing it through
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
