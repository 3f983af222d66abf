// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vulntor/scanlens/pkg/paths"
)

// DefaultContainer is the container scan folders are uploaded to.
const DefaultContainer = "scan-results"

// DefaultMaxBlobSize bounds a single download. Scan artifacts are text
// reports, so anything larger is almost certainly not one of ours.
const DefaultMaxBlobSize int64 = 64 << 20

// Config holds storage backend configuration.
type Config struct {
	// Root is the directory holding one sub-directory per container.
	Root string `koanf:"root" yaml:"root" validate:"required"`

	// Container is the blob container scans are read from.
	// Default: scan-results
	Container string `koanf:"container" yaml:"container" validate:"required"`

	// MaxBlobSize is the largest blob Download will return, in bytes.
	// Zero means DefaultMaxBlobSize.
	MaxBlobSize int64 `koanf:"max_blob_size" yaml:"max_blob_size" validate:"gte=0"`
}

// Validate checks the configuration and normalizes Root to an absolute path.
func (c *Config) Validate() error {
	if c.Root == "" {
		return NewInvalidInputError("root", "storage root directory is required")
	}
	if c.Container == "" {
		c.Container = DefaultContainer
	}
	if strings.ContainsAny(c.Container, `/\`) || c.Container == ".." || c.Container == "." {
		return NewInvalidInputError("container", fmt.Sprintf("invalid container name %q", c.Container))
	}
	if c.MaxBlobSize < 0 {
		return NewInvalidInputError("max_blob_size", "must not be negative")
	}
	if c.MaxBlobSize == 0 {
		c.MaxBlobSize = DefaultMaxBlobSize
	}

	// Expand tilde in path
	if strings.HasPrefix(c.Root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.Root = filepath.Join(home, c.Root[2:])
	}

	absPath, err := filepath.Abs(c.Root)
	if err != nil {
		return NewInvalidInputError("root", fmt.Sprintf("invalid path: %v", err))
	}
	c.Root = absPath

	return nil
}

// DefaultRoot returns the default storage root for the current platform,
// following XDG on Unix.
func DefaultRoot() string {
	return paths.DataDir()
}
