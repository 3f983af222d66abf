package appctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulntor/scanlens/pkg/config"
	"github.com/vulntor/scanlens/pkg/logging"
)

func TestWithConfig(t *testing.T) {
	t.Run("stores config manager in context", func(t *testing.T) {
		manager := config.NewManager()
		ctx := WithConfig(context.Background(), manager)

		retrieved, ok := Config(ctx)
		require.True(t, ok)
		require.Same(t, manager, retrieved)
	})

	t.Run("missing manager", func(t *testing.T) {
		_, ok := Config(context.Background())
		require.False(t, ok)
	})

	t.Run("nil manager is not ok", func(t *testing.T) {
		_, ok := Config(WithConfig(context.Background(), nil))
		require.False(t, ok)
	})

	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck // exercising the nil guard
		ctx := WithConfig(nil, config.NewManager())
		_, ok := Config(ctx)
		require.True(t, ok)
	})
}

func TestWithLogSink(t *testing.T) {
	require.Nil(t, LogSink(context.Background()))

	sink := &logging.Sink{}
	require.Same(t, sink, LogSink(WithLogSink(context.Background(), sink)))

	// A nil sink is safe to rotate.
	require.NoError(t, LogSink(context.Background()).Rotate())
}
