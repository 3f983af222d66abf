// pkg/server/errors.go

// Package server classifies 'scanlens serve' failures into stable error
// codes, exit codes and CLI hints.
package server

import (
	"errors"
	"fmt"
)

const (
	errorCodeFeaturesDisabled  = "SERVER_FEATURES_DISABLED"
	errorCodeConfigUnavailable = "SERVER_CONFIG_UNAVAILABLE"
	errorCodeInvalidConfig     = "SERVER_INVALID_CONFIG"
	errorCodeStorageInitFailed = "SERVER_STORAGE_INIT_FAILED"
	errorCodeWatchInitFailed   = "SERVER_WATCH_INIT_FAILED"
	errorCodeAppInitFailed     = "SERVER_INIT_FAILED"
	errorCodeRuntimeFailed     = "SERVER_RUNTIME_FAILED"
)

var (
	// ErrFeaturesDisabled indicates API and metrics were both disabled.
	ErrFeaturesDisabled = errors.New("api and metrics disabled")
	// ErrConfigUnavailable indicates the CLI context lacked a config manager.
	ErrConfigUnavailable = errors.New("config manager unavailable")
)

type errorCoder interface {
	error
	Code() string
}

type withCodeError struct {
	error
	code string
}

func (e *withCodeError) Code() string {
	return e.code
}

func (e *withCodeError) Unwrap() error {
	return e.error
}

// WithErrorCode annotates err with a server error code.
func WithErrorCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &withCodeError{error: err, code: code}
}

// NewFeaturesDisabledError reports mutually-disabled API/metrics flags.
func NewFeaturesDisabledError() error {
	return WithErrorCode(fmt.Errorf("%w: cannot disable both API and metrics: at least one must be enabled", ErrFeaturesDisabled), errorCodeFeaturesDisabled)
}

// WrapInvalidConfig annotates configuration load and validation errors.
func WrapInvalidConfig(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(fmt.Errorf("invalid configuration: %w", err), errorCodeInvalidConfig)
}

// WrapStorageInit annotates blob store initialization failures.
func WrapStorageInit(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(err, errorCodeStorageInitFailed)
}

// WrapWatchInit annotates scan watcher initialization failures.
func WrapWatchInit(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(err, errorCodeWatchInitFailed)
}

// WrapAppInit annotates server app creation failures.
func WrapAppInit(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(err, errorCodeAppInitFailed)
}

// WrapRuntime annotates server runtime failures.
func WrapRuntime(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(err, errorCodeRuntimeFailed)
}

// ErrorCode resolves a server error to its error code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var coded errorCoder
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			return code
		}
	}

	switch {
	case errors.Is(err, ErrFeaturesDisabled):
		return errorCodeFeaturesDisabled
	case errors.Is(err, ErrConfigUnavailable):
		return errorCodeConfigUnavailable
	default:
		return errorCodeRuntimeFailed
	}
}

// ExitCode maps server errors to CLI exit codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, ErrFeaturesDisabled),
		ErrorCode(err) == errorCodeInvalidConfig:
		return 2
	case errors.Is(err, ErrConfigUnavailable):
		return 1
	case ErrorCode(err) == errorCodeStorageInitFailed,
		ErrorCode(err) == errorCodeWatchInitFailed,
		ErrorCode(err) == errorCodeAppInitFailed:
		return 7
	default:
		return 1
	}
}

// Suggestions provides CLI hints for server errors.
func Suggestions(err error) []string {
	if err == nil {
		return nil
	}

	switch ErrorCode(err) {
	case errorCodeFeaturesDisabled:
		return []string{
			"Enable either the API or the metrics endpoint",
			"Remove one of --server.api_enabled=false / --server.metrics_enabled=false",
		}
	case errorCodeConfigUnavailable:
		return []string{
			"Run via the scanlens CLI so configuration is loaded first",
		}
	case errorCodeInvalidConfig:
		return []string{
			"Check configuration values in config file",
			"Use a port between 1 and 65535:  scanlens serve --server.port 8080",
			"Retry with --debug for detailed validation errors",
		}
	case errorCodeStorageInitFailed:
		return []string{
			"Verify the storage root exists and is readable",
			"Override storage root:     scanlens serve --storage.root <path>",
		}
	case errorCodeWatchInitFailed:
		return []string{
			"Verify the container directory exists",
			"Check the inotify watch limit (fs.inotify.max_user_watches)",
		}
	case errorCodeAppInitFailed:
		return []string{
			"Retry with verbose logging: scanlens serve --debug",
			"Review configuration for invalid values",
		}
	case errorCodeRuntimeFailed:
		return []string{
			"Check server logs for runtime errors",
			"Ensure no other process is using the selected port",
		}
	default:
		return nil
	}
}
