// Package appctx carries CLI-wide state on a context.
package appctx

import (
	"context"

	"github.com/vulntor/scanlens/pkg/config"
	"github.com/vulntor/scanlens/pkg/logging"
)

type key string

const (
	configKey  key = "scanlens.config.manager"
	logSinkKey key = "scanlens.log.sink"
)

// WithConfig stores the shared config manager on context.
func WithConfig(ctx context.Context, manager *config.Manager) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey, manager)
}

// Config retrieves the shared config manager from context.
func Config(ctx context.Context) (*config.Manager, bool) {
	if ctx == nil {
		return nil, false
	}
	mgr, ok := ctx.Value(configKey).(*config.Manager)
	return mgr, ok && mgr != nil
}

// WithLogSink stores the rotating log sink set up by the root command.
func WithLogSink(ctx context.Context, sink *logging.Sink) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, logSinkKey, sink)
}

// LogSink returns the sink stored by WithLogSink. A nil sink is valid and
// rotates nothing.
func LogSink(ctx context.Context) *logging.Sink {
	if ctx == nil {
		return nil
	}
	sink, _ := ctx.Value(logSinkKey).(*logging.Sink)
	return sink
}
