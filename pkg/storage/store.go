// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package storage provides read access to the blob container holding scan
// artifacts.
package storage

import (
	"context"
	"time"
)

// BlobInfo describes one blob in a container listing.
type BlobInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// BlobStore is the read-only view of an object store the summary service
// needs. Names are slash separated and relative to the container.
//
// Download returns an error matching ErrNotFound when the blob does not
// exist. Any other error is an upstream failure.
type BlobStore interface {
	// ListBlobs returns every blob in container, sorted by name.
	ListBlobs(ctx context.Context, container string) ([]BlobInfo, error)

	// Download returns the full content of one blob.
	Download(ctx context.Context, container, name string) ([]byte, error)

	// Close releases resources. Further calls return ErrClosed.
	Close() error
}

// Names returns the blob names of infos, in order.
func Names(infos []BlobInfo) []string {
	out := make([]string, len(infos))
	for i, b := range infos {
		out[i] = b.Name
	}
	return out
}
