package shared

import (
	"context"
	"time"
)

// StoredResponse is the outcome of a request replayed for a repeated idempotency key
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore remembers client-supplied request keys so that a retried
// mutation (receive, payment, refund) is applied at most once.
type IdempotencyStore interface {
	// Reserve claims key for ttl. When the key is already taken, reserved is false
	// and stored holds the earlier response, or nil while that request is still running.
	Reserve(ctx context.Context, key string, ttl time.Duration) (reserved bool, stored *StoredResponse, err error)

	// Complete records the response of a reserved key for later replay
	Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error

	// Release drops a reservation so a failed request can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key and its response are kept. Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency keys are honoured
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
