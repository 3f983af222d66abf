// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/vulntor/scanlens/cmd/scanlens/internal/format"
	"github.com/vulntor/scanlens/pkg/server"
	"github.com/vulntor/scanlens/pkg/service"
	"github.com/vulntor/scanlens/pkg/storage"
)

// errStorageUnconfigured means the root command did not run first.
var errStorageUnconfigured = errors.New("storage configuration missing from context")

var errWatchUnsupported = errors.New("only local storage can be watched")

// reportedError marks an error the formatter already printed.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// reportErr prints err through f and marks it reported.
func reportErr(f format.Formatter, err error) error {
	if err == nil || IsReported(err) {
		return err
	}
	_ = f.PrintError(err)
	return reportedError{err}
}

// openService opens the configured blob store and returns a Service over
// it. The caller closes the store.
func openService(ctx context.Context, obs service.Observer) (*service.Service, storage.BlobStore, error) {
	cfg, ok := storage.ConfigFromContext(ctx)
	if !ok {
		return nil, nil, errStorageUnconfigured
	}
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.New(store, cfg.Container, obs), store, nil
}

// withService runs fn against a freshly opened service and reports any
// error through the command's formatter.
func withService(cmd *cobra.Command, fn func(svc *service.Service, f format.Formatter) error) error {
	f := format.FromCommand(cmd)

	svc, store, err := openService(cmd.Context(), nil)
	if err != nil {
		return reportErr(f, err)
	}
	defer func() { _ = store.Close() }()

	return reportErr(f, fn(svc, f))
}

// fail prints a failed operation with server hints and marks err reported so
// main only maps it to an exit code.
func fail(f format.Formatter, operation string, err error) error {
	_ = f.PrintTotalFailureSummary(operation, err, server.Suggestions(err))
	return reportedError{err}
}
