// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vulntor/scanlens/cmd/scanlens/internal/format"
	"github.com/vulntor/scanlens/pkg/aggregate"
	"github.com/vulntor/scanlens/pkg/parse"
	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/scanpath"
	"github.com/vulntor/scanlens/pkg/service"
)

func newLatestCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:     "latest",
		GroupID: "query",
		Short:   "Summarize the newest scan folder",
		Long: `Summarize the newest scan folder in the container, optionally restricted to
one target. With no scan uploaded yet an empty summary is printed.`,
		Example: `  scanlens latest
  scanlens latest --target 10.0.0.4 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *service.Service, f format.Formatter) error {
				s, err := svc.Latest(cmd.Context(), target)
				if err != nil {
					return err
				}
				return f.PrintScanSummary(s)
			})
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Only consider scans of this target")
	return cmd
}

func newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "report <target> <date>",
		GroupID: "query",
		Short:   "Summarize one scan folder",
		Example: `  scanlens report 10.0.0.4 2025-09-07T09-20`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := report.ScanLocation{Target: args[0], Date: args[1]}
			return withService(cmd, func(svc *service.Service, f format.Formatter) error {
				s, err := svc.Report(cmd.Context(), loc)
				if err != nil {
					return err
				}
				return f.PrintScanSummary(s)
			})
		},
	}
}

func newToolCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "tool <target> <date> <tool>",
		GroupID: "query",
		Short:   "Show the parsed output of a single tool",
		Long: fmt.Sprintf(`Show the parsed output of a single tool from one scan folder.

Known tools: %v`, aggregate.ToolNames()),
		Example:   `  scanlens tool 10.0.0.4 2025-09-07T09-20 nmap`,
		Args:      cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := report.ScanLocation{Target: args[0], Date: args[1]}
			return withService(cmd, func(svc *service.Service, f format.Formatter) error {
				v, err := svc.Tool(cmd.Context(), loc, args[2])
				if err != nil {
					return err
				}
				if f.Mode() != format.ModeTable {
					return f.PrintData(v)
				}
				return f.PrintScanSummary(toolSummary(loc, args[2], v))
			})
		},
	}
}

// toolSummary wraps a single tool view in a summary so the table renderer
// can show it with its own counts.
func toolSummary(loc report.ScanLocation, tool string, v any) report.ScanSummary {
	s := report.ScanSummary{Target: loc.Target}
	if iso, ok := scanpath.FolderDateToISO(loc.Date); ok {
		s.ScanDate = iso
	}

	switch r := v.(type) {
	case *report.NiktoResult:
		s.Nikto, s.IP = r, r.IP
	case *report.NmapResult:
		s.Nmap, s.IP = r, r.IP
	case *report.NucleiResult:
		s.Nuclei, s.IP = r, r.IP
	case *report.ToolResult:
		s.IP = r.IP
		switch tool {
		case parse.ToolHydra:
			s.Hydra = r
		case parse.ToolGobuster:
			s.Gobuster = r
		case parse.ToolSQLMap:
			s.SQLMap = r
		}
	case []report.Credential:
		s.Credentials = r
	case []string:
		s.Wordlist = r
	}
	s.IP = report.OrUnknown(s.IP)
	s.Summary = aggregate.Count(&s)
	return s
}

func newListCommand() *cobra.Command {
	var (
		target string
		date   string
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:     "list",
		GroupID: "query",
		Short:   "List scan folders, newest first",
		Example: `  scanlens list
  scanlens list --target 10.0.0.4 --date 2025-09 --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *service.Service, f format.Formatter) error {
				page, err := svc.List(cmd.Context(),
					scanpath.Filter{Target: target, DatePrefix: date},
					service.Page{Limit: limit, Cursor: cursor},
				)
				if err != nil {
					return err
				}
				if f.Mode() != format.ModeTable {
					return f.PrintData(page)
				}

				rows := make([][]string, 0, len(page.Items))
				for _, it := range page.Items {
					c := it.Summary
					rows = append(rows, []string{
						it.Target, it.Date, it.IP,
						strconv.Itoa(c.TotalVulnerabilities),
						strconv.Itoa(c.CriticalFindings),
						strconv.Itoa(c.HighFindings),
						strconv.Itoa(c.OpenPorts),
					})
				}
				if err := f.PrintTable([]string{"target", "date", "ip", "vulns", "critical", "high", "ports"}, rows); err != nil {
					return err
				}

				msg := fmt.Sprintf("%d of %d scans", len(page.Items), page.Total)
				if page.NextCursor != "" {
					msg += fmt.Sprintf(" (next page: --cursor %s)", page.NextCursor)
				}
				return f.PrintSummary(msg)
			})
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Only list scans of this target")
	cmd.Flags().StringVar(&date, "date", "", "Only list date folders with this prefix, e.g. 2025-09")
	cmd.Flags().IntVar(&limit, "limit", service.DefaultPageSize, fmt.Sprintf("Page size (max %d)", service.MaxPageSize))
	cmd.Flags().StringVar(&cursor, "cursor", "", "Cursor from the previous page")
	return cmd
}

func newTargetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "targets",
		GroupID: "query",
		Short:   "List targets that have at least one scan",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *service.Service, f format.Formatter) error {
				targets, err := svc.Targets(cmd.Context())
				if err != nil {
					return err
				}
				if f.Mode() != format.ModeTable {
					if targets == nil {
						targets = []string{}
					}
					return f.PrintData(targets)
				}
				rows := make([][]string, 0, len(targets))
				for _, t := range targets {
					rows = append(rows, []string{t})
				}
				return f.PrintTable([]string{"target"}, rows)
			})
		},
	}
}
