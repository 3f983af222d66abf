// pkg/config/config.go

// Package config loads layered scanlens configuration with koanf.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/vulntor/scanlens/pkg/storage"
)

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex
}

// NewManager creates a Manager with its own koanf instance.
func NewManager() *Manager {
	return &Manager{koanfInstance: koanf.New(".")}
}

// DefaultConfig returns a new Config struct populated with hardcoded default values.
// These serve as the baseline configuration if no other sources override them.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
		Storage: StorageConfig{
			Root:        storage.DefaultRoot(),
			Container:   storage.DefaultContainer,
			MaxBlobSize: storage.DefaultMaxBlobSize,
		},
		Server: DefaultServerConfig(),
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Load loads configuration from the default sources: defaults, the optional
// YAML file, SCANLENS_* environment variables and flags.
func (m *Manager) Load(flags *pflag.FlagSet, customConfigFilePath string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}
	return m.LoadWithSources(DefaultSources(customConfigFilePath, flags, debug))
}

// LoadWithSources loads sources in ascending priority, then unmarshals and
// validates the merged result. The previous configuration is kept when
// loading fails.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := make([]ConfigSource, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority() < ordered[j].Priority() })

	k := koanf.New(".")
	for _, src := range ordered {
		if err := src.Load(k); err != nil {
			return fmt.Errorf("config source %s: %w", src.Name(), err)
		}
		log.Trace().Str("component", "config").Str("source", src.Name()).Msg("Config source loaded")
	}

	var newCfg Config
	if err := k.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := newCfg.Validate(); err != nil {
		return err
	}

	m.koanfInstance = k
	m.currentConfig = newCfg
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentConfig
}

// Koanf exposes the merged key space, mainly for 'config' style
// introspection and tests.
func (m *Manager) Koanf() *koanf.Koanf {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.koanfInstance
}

// StorageConfig converts the storage section for storage.Open.
func (c Config) StorageConfig() *storage.Config {
	return &storage.Config{
		Root:        c.Storage.Root,
		Container:   c.Storage.Container,
		MaxBlobSize: c.Storage.MaxBlobSize,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and reports every failing field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", keyFor(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// keyFor turns Config.Server.ReadTimeout into server.readtimeout, close
// enough to the koanf key for a human to find it.
func keyFor(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	return strings.ToLower(ns)
}

// DefaultConfigAsMap converts the DefaultConfig struct to a flat map for
// koanf's confmap.Provider, so every key exists before overrides apply.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":       def.Log.Level,
		"log.format":      def.Log.Format,
		"log.file":        def.Log.File,
		"log.max_size_mb": def.Log.MaxSizeMB,
		"log.max_backups": def.Log.MaxBackups,

		"storage.root":          def.Storage.Root,
		"storage.container":     def.Storage.Container,
		"storage.max_blob_size": def.Storage.MaxBlobSize,

		"server.addr":            def.Server.Addr,
		"server.port":            def.Server.Port,
		"server.api_enabled":     def.Server.APIEnabled,
		"server.metrics_enabled": def.Server.MetricsEnabled,
		"server.read_timeout":    def.Server.ReadTimeout,
		"server.write_timeout":   def.Server.WriteTimeout,

		"watch.enabled":  def.Watch.Enabled,
		"watch.debounce": def.Watch.Debounce,
	}
}

// BindFlags defines the global flags that map onto configuration keys.
// The --config flag itself lives on the root command.
func BindFlags(flags *pflag.FlagSet) {
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log.level", "", "Log level (debug, info, warn, error)")
	flags.String("log.format", "", "Log format (text, json)")
	flags.String("log.file", "", "Path to a rotated log file (optional)")
	flags.String("storage.root", "", "Directory holding blob containers")
	flags.String("storage.container", "", "Blob container holding scans/")
}
