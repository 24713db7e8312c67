package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

const searchResponse = `{"total": 1, "issues": [
  {"key": "DEMO-1", "rule": "go:S1144", "severity": "MAJOR", "type": "BUG",
   "component": "demo:main.go", "line": 4, "message": "Remove this unused function.", "status": "OPEN"}
]}`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf("workspace:\n  root: %s\nlogger:\n  session_log: %s\n%s",
		dir, filepath.Join(dir, "session.log"), body)
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cfgFile = ""
	})
	return Execute(), out.String()
}

func TestExecuteVersion(t *testing.T) {
	path := writeConfig(t, "agent:\n  command: fixer\n")
	code, out := execute(t, "version", "--config", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Fixing Agent: fixer")
}

func TestExecuteExitCodes(t *testing.T) {
	path := writeConfig(t, "")

	testCases := []struct {
		name string
		args []string
		want int
	}{
		{name: "missing explicit config", args: []string{"version", "--config", filepath.Join(t.TempDir(), "nope.yml")}, want: errs.ExitInvalidUsage},
		{name: "fix without key", args: []string{"fix", "--config", path}, want: errs.ExitInvalidUsage},
		{name: "fix-all with argument", args: []string{"fix-all", "extra", "--config", path}, want: errs.ExitInvalidUsage},
		{name: "unknown flag", args: []string{"analyze", "--nope", "--config", path}, want: errs.ExitInvalidUsage},
		{name: "unknown config key", args: []string{"config", "set", "nope", "x", "--config", path}, want: errs.ExitInvalidUsage},
		{name: "fetch without token", args: []string{"fetch", "--config", path}, want: errs.ExitInvalidUsage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := execute(t, tc.args...)
			assert.Equal(t, tc.want, code)
		})
	}
}

func TestExecuteInvalidConfig(t *testing.T) {
	path := writeConfig(t, "sonar:\n  url: localhost\n")
	code, _ := execute(t, "version", "--config", path)
	assert.Equal(t, errs.ExitInvalidUsage, code)
}

func TestExecuteConfigSet(t *testing.T) {
	path := writeConfig(t, "git:\n  remote: upstream\n")
	t.Setenv("SONARFIX_SONAR_TOKEN", "from-env")

	code, _ := execute(t, "config", "set", "projectKey", "demo", "--config", path)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "project_key: demo")
	assert.Contains(t, string(data), "remote: upstream")
	assert.NotContains(t, string(data), "from-env")

	code, out := execute(t, "config", "show", "--config", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "| sonar.project_key | demo |")
	assert.Contains(t, out, "| sonar.token | ****-env |")
}

func TestExecuteFetchAndAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issues/search", r.URL.Path)
		assert.Equal(t, "Bearer sqp_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, searchResponse)
	}))
	defer server.Close()

	path := writeConfig(t, fmt.Sprintf("sonar:\n  url: %s\n  token: sqp_test\n  project_key: demo\n", server.URL))

	code, out := execute(t, "fetch", "--config", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "DEMO-1")
	assert.Contains(t, out, "main.go:4")

	sarifPath := filepath.Join(t.TempDir(), "out.sarif")
	code, out = execute(t, "analyze", "--sarif", sarifPath, "--config", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "go:S1144")
	data, err := os.ReadFile(sarifPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DEMO-1")
}

func TestExecuteFetchServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	path := writeConfig(t, fmt.Sprintf("sonar:\n  url: %s\n  token: sqp_test\n  project_key: demo\n", server.URL))
	code, _ := execute(t, "fetch", "--config", path)
	assert.Equal(t, errs.ExitRunFailed, code)
}
