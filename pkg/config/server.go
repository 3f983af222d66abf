// pkg/config/server.go
package config

import (
	"time"

	"github.com/spf13/pflag"
)

// DefaultServerConfig returns the default server configuration.
// These are sensible defaults for local use and can be overridden
// via flags, environment variables, or config files.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           "127.0.0.1",
		Port:           8080,
		APIEnabled:     true,
		MetricsEnabled: true,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
	}
}

// BindServerFlags binds server-specific flags to the provided FlagSet.
// These flags will be used by the 'scanlens serve' command.
//
// Flags are namespaced under 'server.' to avoid conflicts with global flags.
// Example: --server.addr, --server.port
func BindServerFlags(flags *pflag.FlagSet) {
	defaults := DefaultServerConfig()

	flags.String("server.addr", defaults.Addr, "Server listen address (use 0.0.0.0 for all interfaces)")
	flags.Int("server.port", defaults.Port, "Server listen port")
	flags.Bool("server.api_enabled", defaults.APIEnabled, "Enable REST API endpoints")
	flags.Bool("server.metrics_enabled", defaults.MetricsEnabled, "Expose Prometheus metrics on /metrics")
	flags.Duration("server.read_timeout", defaults.ReadTimeout, "HTTP read timeout")
	flags.Duration("server.write_timeout", defaults.WriteTimeout, "HTTP write timeout")
}

// BindServeWatchFlags binds the toggle for the watcher that runs inside
// 'scanlens serve'. It lives under the watch section so it never collides
// with the section key itself.
func BindServeWatchFlags(flags *pflag.FlagSet) {
	flags.Bool("watch.enabled", false, "Watch the local container and track the newest scan")
}

// BindWatchFlags binds watcher flags.
func BindWatchFlags(flags *pflag.FlagSet) {
	flags.Duration("watch.debounce", DefaultConfig().Watch.Debounce, "Quiet period before a burst of file events triggers a rescan")
}
