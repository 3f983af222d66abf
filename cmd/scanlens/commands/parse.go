// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/scanlens/cmd/scanlens/internal/format"
	"github.com/vulntor/scanlens/pkg/aggregate"
	"github.com/vulntor/scanlens/pkg/scanpath"
	"github.com/vulntor/scanlens/pkg/storage"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "parse <dir>",
		GroupID: "query",
		Short:   "Summarize a scan folder on local disk",
		Long: `Summarize the tool outputs in a local directory without going through the
blob container. Target and IP come from the reports, falling back to an IP
in the directory path. The scan date comes from a folder named like
2025-09-07T09-20, or else the directory's modification time.`,
		Example: `  scanlens parse ./scans/10.0.0.4/2025-09-07T09-20
  scanlens parse /tmp/run -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := format.FromCommand(cmd)

			dir, err := filepath.Abs(args[0])
			if err != nil {
				return reportErr(f, err)
			}
			info, err := os.Stat(dir)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return reportErr(f, storage.NewNotFoundError("directory", args[0]))
				}
				return reportErr(f, err)
			}
			if !info.IsDir() {
				return reportErr(f, storage.NewInvalidInputError("dir", args[0]+" is not a directory"))
			}

			files, err := readScanDir(dir)
			if err != nil {
				return reportErr(f, err)
			}

			opts := aggregate.Options{ObjectKey: filepath.ToSlash(dir) + "/"}
			if !scanpath.IsCanonicalDate(filepath.Base(dir)) {
				opts.Location.Date = scanpath.FormatFolderDate(info.ModTime())
			}
			s := aggregate.Aggregate(files, opts)
			return reportErr(f, f.PrintScanSummary(s))
		},
	}
}

// readScanDir loads every known tool file present in dir.
func readScanDir(dir string) (aggregate.Files, error) {
	files := make(aggregate.Files, len(scanpath.CandidateFiles))
	for _, name := range scanpath.CandidateFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		files[name] = string(data)
		log.Debug().Str("component", "cli").Str("file", name).Int("bytes", len(data)).Msg("Read scan file")
	}
	return files, nil
}
