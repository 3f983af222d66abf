// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package v1

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vulntor/scanlens/pkg/scanpath"
	"github.com/vulntor/scanlens/pkg/server/api"
	"github.com/vulntor/scanlens/pkg/service"
)

// TargetsResponse is the body of GET /api/v1/targets.
type TargetsResponse struct {
	Targets []string `json:"targets"`
}

// ListTargetsHandler handles GET /api/v1/targets
//
// Returns every target that has at least one scan folder, sorted.
//
// Response format:
//
//	{"targets": ["10.0.0.4", "dvwa.local"]}
func ListTargetsHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := deps.Config.WithHandlerTimeout(r.Context())
		defer cancel()

		targets, err := deps.Summaries.Targets(ctx)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		if targets == nil {
			targets = []string{}
		}
		api.WriteJSON(w, http.StatusOK, TargetsResponse{Targets: targets})
	}
}

// ListScansHandler handles GET /api/v1/scans
//
// Query parameters (all optional):
//   - target: only scans of this target
//   - date: date folder prefix, e.g. "2025-09"
//   - limit: page size, 1-100 (default 20)
//   - cursor: value of nextCursor from the previous page
//
// Response format:
//
//	{
//	  "items": [
//	    {"target": "10.0.0.4", "date": "2025-09-07T09-20", "scanDate": "2025-09-07T09:20:00.000Z",
//	     "ip": "10.0.0.4", "summary": {"totalVulnerabilities": 8, ...}}
//	  ],
//	  "total": 12,
//	  "nextCursor": "eyJvIjoyMCwibCI6IjEwLjAuMC40LzIwMjUtMDktMDdUMDktMjAifQ"
//	}
func ListScansHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := ParseListScansQuery(r)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}

		ctx, cancel := deps.Config.WithHandlerTimeout(r.Context())
		defer cancel()

		page, err := deps.Summaries.List(ctx,
			scanpath.Filter{Target: query.Target, DatePrefix: query.Date},
			service.Page{Limit: query.Limit, Cursor: query.Cursor},
		)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}

		log.Debug().
			Str("component", "api").
			Int("items", len(page.Items)).
			Int("total", page.Total).
			Msg("Listed scans")

		api.WriteJSON(w, http.StatusOK, page)
	}
}

// LatestScanHandler handles GET /api/v1/scans/latest
//
// Returns the aggregated summary of the newest scan folder. The optional
// target query parameter restricts the search to one target. When no scan
// exists the summary has unknown identity and zero counts.
//
// Responses carry an ETag; a matching If-None-Match answers 304.
func LatestScanHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := ParseLatestQuery(r)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}

		ctx, cancel := deps.Config.WithHandlerTimeout(r.Context())
		defer cancel()

		summary, err := deps.Summaries.Latest(ctx, target)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSONWithETag(w, r, summary)
	}
}

// GetScanHandler handles GET /api/v1/scans/{target}/{date}
//
// Returns the aggregated summary of one scan folder. A folder without any
// known scan file still answers 200 with zero counts.
func GetScanHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := ParseLocation(r)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}

		ctx, cancel := deps.Config.WithHandlerTimeout(r.Context())
		defer cancel()

		summary, err := deps.Summaries.Report(ctx, loc)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSONWithETag(w, r, summary)
	}
}

// GetToolHandler handles GET /api/v1/scans/{target}/{date}/{tool}
//
// Returns the parsed result of a single tool. Returns 404 for an unknown
// tool name or when the folder holds no usable output for it.
func GetToolHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := ParseLocation(r)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		tool := r.PathValue("tool")

		ctx, cancel := deps.Config.WithHandlerTimeout(r.Context())
		defer cancel()

		result, err := deps.Summaries.Tool(ctx, loc, tool)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSONWithETag(w, r, result)
	}
}
