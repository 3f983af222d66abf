// Package api holds the dependencies and response helpers shared by the
// versioned HTTP handlers.
package api

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/scanpath"
	"github.com/vulntor/scanlens/pkg/service"
)

// Deps holds dependencies for API handlers.
// This pattern enables dependency injection and easier testing.
type Deps struct {
	// Summaries answers scan queries
	Summaries SummaryService

	// Metrics serves /metrics when set
	Metrics http.Handler

	// Config holds handler timeouts
	Config Config

	// Ready flag for readiness check
	Ready *atomic.Bool
}

// SummaryService is the subset of service.Service the API needs.
// Defined here to ease mocking.
type SummaryService interface {
	Latest(ctx context.Context, target string) (report.ScanSummary, error)
	Report(ctx context.Context, loc report.ScanLocation) (report.ScanSummary, error)
	Tool(ctx context.Context, loc report.ScanLocation, tool string) (any, error)
	List(ctx context.Context, f scanpath.Filter, p service.Page) (service.ScanPage, error)
	Targets(ctx context.Context) ([]string, error)
}

var _ SummaryService = (*service.Service)(nil)
