package app

import (
	"github.com/rs/zerolog"

	"github.com/vulntor/scanlens/pkg/logging"
	"github.com/vulntor/scanlens/pkg/metrics"
	"github.com/vulntor/scanlens/pkg/server/api"
	"github.com/vulntor/scanlens/pkg/storage"
	"github.com/vulntor/scanlens/pkg/watch"
)

// Deps holds dependencies for the server application.
// This pattern enables dependency injection and easier testing.
type Deps struct {
	// Summaries answers the API's scan queries
	Summaries api.SummaryService

	// Store is closed on shutdown when set
	Store storage.BlobStore

	// Metrics backs /metrics and the request counter (optional)
	Metrics *metrics.Metrics

	// Watcher runs alongside the HTTP server when set
	Watcher *watch.Watcher

	// LogSink is rotated on SIGUSR1 (optional)
	LogSink *logging.Sink

	// Logger for structured logging (injected by caller)
	Logger zerolog.Logger
}
