package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jkarethiya/sonarfix/internal/config"
)

const (
	logLevelEnv       = "SONARFIX_LOG_LEVEL"
	sessionTimeFormat = "2006-01-02T15:04:05.000Z07:00"
)

// NewLogger creates a new hclog.Logger instance based on the YAML configuration and the provided name.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	return newLogger(cfg, name, os.Stdout)
}

func newLogger(cfg *config.Config, name string, output io.Writer) hclog.InterceptLogger {
	return hclog.NewInterceptLogger(&hclog.LoggerOptions{
		Name:            name,
		DisableTime:     true,
		JSONFormat:      config.GetBoolValue(cfg, "Logger.JSONFormat", false),
		IncludeLocation: config.GetBoolValue(cfg, "Logger.IncludeLocation", false),
		Output:          output,
		Level:           determineLogLevel(cfg),
	})
}

// SessionLogger is a console logger that also appends every record, timestamped,
// to the durable session log file.
type SessionLogger struct {
	hclog.InterceptLogger
	file *os.File
	path string
}

// NewSessionLogger opens (or creates) the session log configured in cfg and returns
// a logger that writes to the console and to that file.
func NewSessionLogger(cfg *config.Config, name string, console io.Writer) (*SessionLogger, error) {
	path, err := config.ExpandPath(cfg.Logger.SessionLog)
	if err != nil {
		return nil, fmt.Errorf("failed to expand session log path %q: %w", cfg.Logger.SessionLog, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session log folder: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log %q: %w", path, err)
	}

	l := newLogger(cfg, name, console)
	l.RegisterSink(hclog.NewSinkAdapter(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.Debug,
		Output:     f,
		TimeFormat: sessionTimeFormat,
	}))

	return &SessionLogger{InterceptLogger: l, file: f, path: path}, nil
}

// Path returns the location of the session log file.
func (l *SessionLogger) Path() string {
	return l.path
}

// Close flushes and closes the session log file.
func (l *SessionLogger) Close() error {
	return l.file.Close()
}

// GetLoggerOutput returns a writer forwarding lines to the logger at debug level,
// used for progress output of long running git operations.
func GetLoggerOutput(logger hclog.Logger) io.Writer {
	return logger.StandardWriter(&hclog.StandardLoggerOptions{
		ForceLevel: hclog.Debug,
	})
}

// determineLogLevel returns a log level determined first by an environment variable, and if not set, by the provided configuration.
// If neither configuration nor environment variable specifies a log level, it defaults to INFO.
func determineLogLevel(cfg *config.Config) hclog.Level {
	if v := os.Getenv(logLevelEnv); v != "" {
		return parseLogLevel(strings.ToUpper(v))
	}
	if cfg == nil {
		return hclog.Info
	}
	return parseLogLevel(strings.ToUpper(cfg.Logger.Level))
}

// parseLogLevel converts a string level to hclog.Level.
func parseLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO", "":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		hclog.New(&hclog.LoggerOptions{
			Level:       hclog.Warn,
			DisableTime: true,
			Output:      os.Stderr,
		}).Warn("unrecognized log level, defaulting to INFO", "providedLevel", levelStr)
		return hclog.Info
	}
}
