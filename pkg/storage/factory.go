// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package storage

import (
	"context"
	"fmt"
)

// Factory creates a BlobStore from configuration.
type Factory func(ctx context.Context, cfg *Config) (BlobStore, error)

// DefaultFactory is the factory used by Open. It points at the local
// filesystem store and may be replaced by builds that ship a cloud backend,
// or by tests.
var DefaultFactory Factory = func(ctx context.Context, cfg *Config) (BlobStore, error) {
	store, err := NewLocalStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Open validates cfg and creates a store using the current DefaultFactory.
//
// Example:
//
//	store, err := storage.Open(ctx, &storage.Config{Root: "/srv/blobs"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func Open(ctx context.Context, cfg *Config) (BlobStore, error) {
	if cfg == nil {
		return nil, NewInvalidInputError("", "storage configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage configuration: %w", err)
	}

	if DefaultFactory == nil {
		return nil, fmt.Errorf("no storage backend factory registered")
	}

	store, err := DefaultFactory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	return store, nil
}
