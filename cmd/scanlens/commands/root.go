// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package commands holds the scanlens cobra command tree.
package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/scanlens/cmd/scanlens/internal/format"
	"github.com/vulntor/scanlens/pkg/appctx"
	"github.com/vulntor/scanlens/pkg/config"
	"github.com/vulntor/scanlens/pkg/logging"
	"github.com/vulntor/scanlens/pkg/paths"
	"github.com/vulntor/scanlens/pkg/server"
	"github.com/vulntor/scanlens/pkg/storage"
)

const cliExecutable = "scanlens"

// NewCommand constructs the top-level scanlens CLI command, wiring global
// flags, configuration loading and logging setup.
func NewCommand() *cobra.Command {
	var (
		configFile string
		outputMode string
		logSink    *logging.Sink
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Summarize Nikto, Nmap, Nuclei and friends from stored scan folders",
		Long: `scanlens reads scan artifacts uploaded under scans/<target>/<date>/ in a
blob container and turns them into one normalized summary per scan: findings
by severity, open ports, credentials, discovered directories and wordlists.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			f := format.FromCommand(cmd)
			if err := format.ValidateMode(outputMode); err != nil {
				return reportErr(f, err)
			}

			if configFile == "" {
				configFile = paths.DefaultConfigFile()
			}
			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), configFile); err != nil {
				return reportErr(f, server.WrapInvalidConfig(fmt.Errorf("load configuration: %w", err)))
			}
			cfg := mgr.Get()

			sink, err := logging.Setup(logging.Options{
				Level:      cfg.Log.Level,
				Format:     cfg.Log.Format,
				File:       cfg.Log.File,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
			})
			if err != nil {
				return reportErr(f, fmt.Errorf("setup logging: %w", err))
			}
			logSink = sink

			log.Debug().
				Str("component", "cli").
				Str("storage_root", cfg.Storage.Root).
				Str("container", cfg.Storage.Container).
				Msg("Configuration loaded")

			ctx := appctx.WithConfig(cmd.Context(), mgr)
			ctx = appctx.WithLogSink(ctx, sink)
			ctx = storage.WithConfig(ctx, cfg.StorageConfig())

			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logSink.Close()
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path (default: $XDG_CONFIG_HOME/scanlens/config.yaml)")
	cmd.PersistentFlags().StringVarP(&outputMode, "output", "o", "table", "Output format: table, json or yaml")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational messages")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddGroup(&cobra.Group{ID: "query", Title: "Query Commands"})
	cmd.AddGroup(&cobra.Group{ID: "runtime", Title: "Runtime Commands"})

	cmd.AddCommand(newLatestCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newToolCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newTargetsCommand())
	cmd.AddCommand(newParseCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newWatchCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}
