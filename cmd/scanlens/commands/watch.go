// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/scanlens/cmd/scanlens/internal/format"
	"github.com/vulntor/scanlens/pkg/appctx"
	"github.com/vulntor/scanlens/pkg/config"
	"github.com/vulntor/scanlens/pkg/logging"
	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/server"
	"github.com/vulntor/scanlens/pkg/service"
	"github.com/vulntor/scanlens/pkg/storage"
)

const watchOperation = "watch scans"

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: "runtime",
		Short:   "Print a summary whenever a newer scan folder appears",
		Long: `Watch the local blob container and print the summary of the newest scan
folder each time it changes. The current latest scan, if any, is printed
first. Runs until interrupted.`,
		Example: `  scanlens watch
  scanlens watch -o json --watch.debounce 2s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := format.FromCommand(cmd)

			mgr, ok := appctx.Config(cmd.Context())
			if !ok {
				return fail(f, watchOperation, server.ErrConfigUnavailable)
			}
			cfg := mgr.Get()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := storage.Open(ctx, cfg.StorageConfig())
			if err != nil {
				return fail(f, watchOperation, server.WrapStorageInit(err))
			}
			defer func() { _ = store.Close() }()

			svc := service.New(store, cfg.Storage.Container, nil)
			logger := logging.NewLogger("watch", zerolog.InfoLevel)

			w, err := newLatestWatcher(store, cfg, svc, logger, func(loc report.ScanLocation) {
				printLatest(ctx, f, svc, loc)
			})
			if err != nil {
				return fail(f, watchOperation, server.WrapWatchInit(err))
			}

			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fail(f, watchOperation, server.WrapRuntime(err))
			}
			return nil
		},
	}

	config.BindWatchFlags(cmd.Flags())
	return cmd
}

// printLatest summarizes loc and prints it. Failures are logged; the watcher
// keeps running.
func printLatest(ctx context.Context, f format.Formatter, svc *service.Service, loc report.ScanLocation) {
	s, err := svc.Report(ctx, loc)
	if err != nil {
		log.Warn().
			Err(err).
			Str("component", "cli").
			Str("target", loc.Target).
			Str("date", loc.Date).
			Msg("Failed to summarize new scan")
		return
	}
	if err := f.PrintScanSummary(s); err != nil {
		log.Warn().Err(err).Str("component", "cli").Msg("Failed to print summary")
	}
}
