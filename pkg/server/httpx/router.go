// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package httpx

import (
	"net/http"

	"github.com/vulntor/scanlens/pkg/config"
	"github.com/vulntor/scanlens/pkg/server/api"
	v1 "github.com/vulntor/scanlens/pkg/server/api/v1"
)

// NewRouter creates and configures the main HTTP router.
// It mounts health endpoints, the summary API and metrics based on the
// configuration.
//
// The router uses Go 1.22+ enhanced pattern matching for cleaner routes.
// Routes are mounted conditionally based on cfg.APIEnabled and
// cfg.MetricsEnabled.
//
// Health endpoints are always enabled for liveness/readiness checks.
func NewRouter(cfg config.ServerConfig, deps *api.Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Health endpoints (always enabled)
	mux.HandleFunc("GET /healthz", HealthzHandler)
	mux.HandleFunc("GET /readyz", v1.ReadyzHandler(deps.Ready))

	if cfg.MetricsEnabled && deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	// API endpoints (conditional)
	if cfg.APIEnabled && deps.Summaries != nil {
		mux.HandleFunc("GET /api/v1/targets", v1.ListTargetsHandler(deps))
		mux.HandleFunc("GET /api/v1/scans", v1.ListScansHandler(deps))
		mux.HandleFunc("GET /api/v1/scans/latest", v1.LatestScanHandler(deps))
		mux.HandleFunc("GET /api/v1/scans/{target}/{date}", v1.GetScanHandler(deps))
		mux.HandleFunc("GET /api/v1/scans/{target}/{date}/{tool}", v1.GetToolHandler(deps))
	}

	return mux
}

// HealthzHandler responds with 200 OK if the server process is alive.
// This endpoint is used by load balancers and orchestrators for liveness checks.
//
// It does not check dependencies (storage, watcher) - just process health.
// For comprehensive readiness checks, use /readyz instead.
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
