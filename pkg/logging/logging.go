// pkg/logging/logging.go

// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	stdLog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// logWriter is the console sink used by Setup.
	logWriter io.Writer
)

// Options mirror the log section of the configuration.
type Options struct {
	Level      string
	Format     string // "text" (console) or "json"
	File       string // optional rotated file sink, always JSON
	MaxSizeMB  int
	MaxBackups int
}

// stdLogWriter reformats stdlib log output (from net/http and friends) into
// zerolog events.
type stdLogWriter struct {
	logger zerolog.Logger
}

func (w *stdLogWriter) Write(p []byte) (n int, err error) {
	message := strings.TrimSuffix(string(p), "\n")

	// "2025/05/23 14:40:15 server.go:3195: http: TLS handshake error"
	parts := strings.SplitN(message, " ", 4)
	if len(parts) >= 4 {
		stdTime, err := time.Parse("2006/01/02 15:04:05", parts[0]+" "+parts[1])
		if err == nil {
			w.logger.Debug().
				Str("file", strings.TrimSuffix(parts[2], ":")).
				Time("time", stdTime).
				Msg(parts[3])
			return len(p), nil
		}
	}

	w.logger.Debug().Msg(message)
	return len(p), nil
}

// init keeps the global logger quiet until the CLI configures logging.
// Component loggers built with NewLogger keep their own level.
func init() {
	logWriter = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(logWriter).With().Timestamp().Logger().Level(zerolog.ErrorLevel)
}

// NewLogger returns a console logger on stderr tagged with component.
func NewLogger(component string, level zerolog.Level) zerolog.Logger {
	return NewLoggerWithWriter(component, level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// NewLoggerWithWriter returns a logger writing to w tagged with component.
func NewLoggerWithWriter(component string, level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// ConfigureGlobal sets the global level and rebuilds log.Logger on the
// current console writer.
func ConfigureGlobal(level zerolog.Level) {
	install(getLogWriter(), level)
}

// Sink is the optional rotated log file behind the global logger. A nil
// Sink, or one without a file, is a no-op.
type Sink struct {
	file *lumberjack.Logger
}

// Rotate closes the current log file and starts a new one.
func (s *Sink) Rotate() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Rotate()
}

// Close releases the log file.
func (s *Sink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Setup configures global logging from opts.
func Setup(opts Options) (*Sink, error) {
	level := parseLogLevel(opts.Level)

	var console io.Writer
	switch strings.ToLower(opts.Format) {
	case "json":
		console = os.Stderr
	case "", "text":
		console = getLogWriter()
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	sink := &Sink{}
	w := console
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    max(1, opts.MaxSizeMB),
			MaxBackups: max(0, opts.MaxBackups),
		}
		sink.file = lj
		w = zerolog.MultiLevelWriter(console, lj)
	}

	install(w, level)
	return sink, nil
}

func install(w io.Writer, level zerolog.Level) {
	zerolog.SetGlobalLevel(level)

	logContext := zerolog.New(w).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logContext = logContext.Caller()
	}

	log.Logger = logContext.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	stdLog.SetFlags(0)
	stdLog.SetOutput(&stdLogWriter{logger: WithLevelOverride(log.Logger, zerolog.DebugLevel)})
}

// parseLogLevel converts a string log level to zerolog.Level. Empty or
// invalid input falls back to info.
func parseLogLevel(levelString string) zerolog.Level {
	if levelString == "" {
		return zerolog.InfoLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelString))
	if err != nil {
		log.Error().Err(err).
			Str("logLevel", levelString).
			Msg("Invalid log level provided. Defaulting to info level.")
		return zerolog.InfoLevel
	}
	return level
}

func getLogWriter() io.Writer {
	return logWriter
}

// SetLogWriter replaces the console sink used by Setup and ConfigureGlobal.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// LevelOverrideHook assigns a level to NoLevel events and filters events
// below a minimum severity.
type LevelOverrideHook struct {
	minSeverity zerolog.Level
	targetLevel zerolog.Level
}

// NewLevelOverrideHook creates a new LevelOverrideHook instance.
func NewLevelOverrideHook(minSeverity, targetLevel zerolog.Level) *LevelOverrideHook {
	return &LevelOverrideHook{
		minSeverity: minSeverity,
		targetLevel: targetLevel,
	}
}

// Run implements zerolog.Hook.
func (h LevelOverrideHook) Run(e *zerolog.Event, currentLevel zerolog.Level, _ string) {
	if h.minSeverity > h.targetLevel {
		e.Discard()
		return
	}

	if currentLevel == zerolog.NoLevel {
		e.Str("level", h.targetLevel.String())
	}
}

// WithLevelOverride configures a logger to handle NoLevel events and level filtering.
func WithLevelOverride(logger zerolog.Logger, targetLevel zerolog.Level) zerolog.Logger {
	return logger.Hook(NewLevelOverrideHook(logger.GetLevel(), targetLevel))
}
