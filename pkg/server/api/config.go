package api

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for configuration validation
var (
	// ErrInvalidTimeout is returned when a timeout value is invalid (negative).
	ErrInvalidTimeout = errors.New("invalid timeout: must be >= 0")
)

// Config holds API-level configuration.
type Config struct {
	// HandlerTimeout bounds one summary request, storage downloads included.
	// It only applies when the request context has no earlier deadline.
	// Zero disables it.
	//
	// Default: 30 seconds
	HandlerTimeout time.Duration
}

// DefaultConfig returns the default API configuration.
func DefaultConfig() Config {
	return Config{
		HandlerTimeout: 30 * time.Second,
	}
}

// Validate checks that the configuration is valid.
func (c Config) Validate() error {
	if c.HandlerTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// WithHandlerTimeout derives the handler context. The caller must call the
// returned cancel function.
func (c Config) WithHandlerTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.HandlerTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= c.HandlerTimeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.HandlerTimeout)
}
