// pkg/config/types.go
package config

import "time"

// Config is the root configuration structure for scanlens.
type Config struct {
	Log     LogConfig     `description:"Logging configuration" koanf:"log" yaml:"log"`
	Storage StorageConfig `description:"Blob storage configuration" koanf:"storage" yaml:"storage"`
	Server  ServerConfig  `description:"Server configuration" koanf:"server" yaml:"server"`
	Watch   WatchConfig   `description:"Watcher configuration" koanf:"watch" yaml:"watch"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level      string `description:"Log level: debug | info | warn | error" koanf:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format     string `description:"Log format: json | text" koanf:"format" yaml:"format" validate:"oneof=json text"`
	File       string `description:"Log file path, rotated (optional)" koanf:"file" yaml:"file"`
	MaxSizeMB  int    `description:"Rotate the log file after this many megabytes" koanf:"max_size_mb" yaml:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `description:"Rotated log files to keep" koanf:"max_backups" yaml:"max_backups" validate:"gte=0"`
}

// StorageConfig selects the blob container scans are read from.
type StorageConfig struct {
	Root        string `description:"Directory holding one sub-directory per container" koanf:"root" yaml:"root" validate:"required"`
	Container   string `description:"Container scan folders are uploaded to" koanf:"container" yaml:"container" validate:"required,excludesall=/\\"`
	MaxBlobSize int64  `description:"Largest blob read, in bytes" koanf:"max_blob_size" yaml:"max_blob_size" validate:"gte=0"`
}

// ServerConfig holds configuration for the HTTP server.
// Used by 'scanlens serve'.
type ServerConfig struct {
	// Network settings
	Addr string `description:"Server listen address" koanf:"addr" yaml:"addr" validate:"required"`
	Port int    `description:"Server listen port" koanf:"port" yaml:"port" validate:"min=1,max=65535"`

	// Component toggles
	APIEnabled     bool `description:"Enable REST API endpoints" koanf:"api_enabled" yaml:"api_enabled"`
	MetricsEnabled bool `description:"Expose Prometheus metrics on /metrics" koanf:"metrics_enabled" yaml:"metrics_enabled"`

	// HTTP timeouts
	ReadTimeout  time.Duration `description:"HTTP read timeout" koanf:"read_timeout" yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `description:"HTTP write timeout" koanf:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
}

// WatchConfig tunes 'scanlens watch' and the server's background watcher.
type WatchConfig struct {
	Enabled  bool          `description:"Run the background watcher inside scanlens serve" koanf:"enabled" yaml:"enabled"`
	Debounce time.Duration `description:"Quiet period before a burst of file events triggers a rescan" koanf:"debounce" yaml:"debounce" validate:"gte=0"`
}
