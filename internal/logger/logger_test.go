package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkarethiya/sonarfix/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	testCases := map[string]hclog.Level{
		"TRACE": hclog.Trace,
		"DEBUG": hclog.Debug,
		"INFO":  hclog.Info,
		"":      hclog.Info,
		"WARN":  hclog.Warn,
		"ERROR": hclog.Error,
		"LOUD":  hclog.Info,
	}
	for input, want := range testCases {
		assert.Equal(t, want, parseLogLevel(input), "level %q", input)
	}
}

func TestDetermineLogLevelEnvWins(t *testing.T) {
	cfg := config.Default()
	cfg.Logger.Level = "error"
	assert.Equal(t, hclog.Error, determineLogLevel(cfg))

	t.Setenv(logLevelEnv, "debug")
	assert.Equal(t, hclog.Debug, determineLogLevel(cfg))
}

func TestSessionLoggerWritesTimestampedFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logger.SessionLog = filepath.Join(t.TempDir(), "logs", "session.log")

	var console bytes.Buffer
	l, err := NewSessionLogger(cfg, "orchestrator", &console)
	require.NoError(t, err)

	l.Error("push failed", "branch", "sonar-auto-fix")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, "push failed")
	assert.Contains(t, line, "branch=sonar-auto-fix")
	// the file line starts with a timestamp, the console one does not
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T`, line)
	assert.Contains(t, console.String(), "push failed")
	assert.NotRegexp(t, `^\d{4}-\d{2}-\d{2}T`, console.String())
}
