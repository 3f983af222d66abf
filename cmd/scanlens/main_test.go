package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulntor/scanlens/pkg/server"
	"github.com/vulntor/scanlens/pkg/service"
	"github.com/vulntor/scanlens/pkg/storage"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"generic", errors.New("boom"), 1},
		{"invalid input", storage.NewInvalidInputError("cursor", "bad"), 2},
		{"not found", storage.NewNotFoundError("blob", "x"), 4},
		{"unknown tool", fmt.Errorf("%w: masscan", service.ErrUnknownTool), 4},
		{"upstream", fmt.Errorf("%w: list: %w", service.ErrUpstream, errors.New("eio")), 7},
		{"features disabled", server.NewFeaturesDisabledError(), 2},
		{"storage init", server.WrapStorageInit(storage.NewNotFoundError("storage root", "/x")), 7},
		{"server runtime", server.WrapRuntime(errors.New("listen")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}
