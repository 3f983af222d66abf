// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vulntor/scanlens/cmd/scanlens/internal/format"
	"github.com/vulntor/scanlens/pkg/appctx"
	"github.com/vulntor/scanlens/pkg/config"
	"github.com/vulntor/scanlens/pkg/logging"
	"github.com/vulntor/scanlens/pkg/metrics"
	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/scanpath"
	"github.com/vulntor/scanlens/pkg/server"
	"github.com/vulntor/scanlens/pkg/server/app"
	"github.com/vulntor/scanlens/pkg/service"
	"github.com/vulntor/scanlens/pkg/storage"
	"github.com/vulntor/scanlens/pkg/watch"
)

const serveOperation = "start server"

// newServeCommand creates the 'scanlens serve' command.
//
// The server hosts, in a single runtime:
//   - the read-only REST API under /api/v1
//   - /healthz, /readyz and /metrics
//   - optionally a watcher that keeps the latest-scan gauge current
//
// It runs until SIGINT/SIGTERM and then drains in-flight requests.
func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "runtime",
		Short:   "Serve scan summaries over HTTP",
		Long: `Start the scanlens HTTP server.

The server exposes the latest scan, individual scan folders, per-tool views and
a paginated listing as JSON, next to health probes and Prometheus metrics. It
runs until interrupted, then shuts down gracefully.

Send SIGUSR1 to reopen the log file after external rotation.`,
		Example: `  scanlens serve
  scanlens serve --server.addr 0.0.0.0 --server.port 9090 --watch.enabled
  scanlens serve --storage.root /srv/blobs --server.metrics_enabled=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := format.FromCommand(cmd)

			mgr, ok := appctx.Config(cmd.Context())
			if !ok {
				return fail(f, serveOperation, server.ErrConfigUnavailable)
			}
			cfg := mgr.Get()

			if !cfg.Server.APIEnabled && !cfg.Server.MetricsEnabled {
				return fail(f, serveOperation, server.NewFeaturesDisabledError())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.New(true)

			store, err := storage.Open(ctx, cfg.StorageConfig())
			if err != nil {
				return fail(f, serveOperation, server.WrapStorageInit(err))
			}
			svc := service.New(store, cfg.Storage.Container, m)

			logger := logging.NewLogger("server", zerolog.InfoLevel)

			var w *watch.Watcher
			if cfg.Watch.Enabled {
				w, err = newLatestWatcher(store, cfg, svc, logger, func(loc report.ScanLocation) {
					if t, ok := scanpath.FolderDateTime(loc.Date); ok {
						m.SetLatestScan(t)
					}
				})
				if err != nil {
					_ = store.Close()
					return fail(f, serveOperation, server.WrapWatchInit(err))
				}
			}

			a, err := app.New(ctx, cfg.Server, &app.Deps{
				Summaries: svc,
				Store:     store,
				Metrics:   m,
				Watcher:   w,
				LogSink:   appctx.LogSink(cmd.Context()),
				Logger:    logger,
			})
			if err != nil {
				if w != nil {
					_ = w.Close()
				}
				_ = store.Close()
				return fail(f, serveOperation, server.WrapAppInit(err))
			}

			if err := a.Run(ctx); err != nil {
				return fail(f, serveOperation, server.WrapRuntime(err))
			}
			return nil
		},
	}

	config.BindServerFlags(cmd.Flags())
	config.BindWatchFlags(cmd.Flags())
	config.BindServeWatchFlags(cmd.Flags())

	return cmd
}

// newLatestWatcher builds a watcher over the container directory of a local
// store. Other store kinds cannot be watched.
func newLatestWatcher(store storage.BlobStore, cfg config.Config, svc *service.Service, logger zerolog.Logger, onLatest func(report.ScanLocation)) (*watch.Watcher, error) {
	local, ok := store.(*storage.LocalStore)
	if !ok {
		return nil, errWatchUnsupported
	}
	dir, err := local.ContainerDir(cfg.Storage.Container)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	locate := func(ctx context.Context) (report.ScanLocation, bool, error) {
		return svc.Locate(ctx, "")
	}
	return watch.New(dir, cfg.Watch.Debounce, locate, onLatest, logger)
}
