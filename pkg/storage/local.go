// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// LocalStore serves blobs from the filesystem. Each container is a
// directory under Root and blob names are slash paths below it, so a
// synced copy of the bucket can be read in place.
type LocalStore struct {
	root        string
	maxBlobSize int64
	closed      atomic.Bool
}

var _ BlobStore = (*LocalStore)(nil)

// NewLocalStore validates cfg and opens the store rooted at cfg.Root.
// The root must exist; containers are checked lazily.
func NewLocalStore(ctx context.Context, cfg *Config) (*LocalStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewNotFoundError("storage root", cfg.Root)
		}
		return nil, fmt.Errorf("failed to stat storage root: %w", err)
	}
	if !info.IsDir() {
		return nil, NewInvalidInputError("root", fmt.Sprintf("%s is not a directory", cfg.Root))
	}

	log.Debug().
		Str("component", "storage").
		Str("root", cfg.Root).
		Int64("max_blob_size", cfg.MaxBlobSize).
		Msg("Local blob store opened")

	return &LocalStore{root: cfg.Root, maxBlobSize: cfg.MaxBlobSize}, nil
}

// Root returns the absolute root directory.
func (s *LocalStore) Root() string {
	return s.root
}

// ContainerDir returns the directory backing container.
func (s *LocalStore) ContainerDir(container string) (string, error) {
	if container == "" || container == "." || container == ".." || strings.ContainsAny(container, `/\`) {
		return "", NewInvalidInputError("container", fmt.Sprintf("invalid container name %q", container))
	}
	return filepath.Join(s.root, container), nil
}

// ListBlobs walks the container directory and returns every regular file,
// sorted by name.
func (s *LocalStore) ListBlobs(ctx context.Context, container string) ([]BlobInfo, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	dir, err := s.ContainerDir(container)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewNotFoundError("container", container)
		}
		return nil, fmt.Errorf("failed to stat container %s: %w", container, err)
	}

	var out []BlobInfo
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Removed between readdir and stat.
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, BlobInfo{
			Name:     filepath.ToSlash(rel),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list container %s: %w", container, err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Download reads one blob. Names containing ".." segments are rejected.
func (s *LocalStore) Download(ctx context.Context, container, name string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.blobPath(container, name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewNotFoundError("blob", container+"/"+name)
		}
		return nil, fmt.Errorf("failed to open blob %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat blob %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, NewNotFoundError("blob", container+"/"+name)
	}
	if info.Size() > s.maxBlobSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, name, info.Size(), s.maxBlobSize)
	}

	// The file may grow after Stat; never read past the limit.
	data, err := io.ReadAll(io.LimitReader(f, s.maxBlobSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", name, err)
	}
	if int64(len(data)) > s.maxBlobSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, s.maxBlobSize)
	}
	return data, nil
}

func (s *LocalStore) blobPath(container, name string) (string, error) {
	dir, err := s.ContainerDir(container)
	if err != nil {
		return "", err
	}
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return "", NewInvalidInputError("name", fmt.Sprintf("invalid blob name %q", name))
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", NewInvalidInputError("name", fmt.Sprintf("path traversal in blob name %q", name))
		}
	}
	return filepath.Join(dir, filepath.FromSlash(name)), nil
}

// Close marks the store closed.
func (s *LocalStore) Close() error {
	s.closed.Store(true)
	return nil
}
