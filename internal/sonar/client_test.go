package sonar

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

const twoIssues = `{
  "total": 2,
  "issues": [
    {"key": "AX-1", "rule": "go:S1", "severity": "MAJOR", "type": "BUG", "component": "demo:src/a.go", "line": 3, "message": "first", "status": "OPEN"},
    {"key": "AX-2", "rule": "go:S2", "severity": "BLOCKER", "type": "BUG", "component": "demo:src/b.go", "message": "second", "status": "OPEN"}
  ]
}`

func newTestClient(t *testing.T, url string, mutate func(*config.Config)) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.Sonar.URL = url
	cfg.Sonar.Token = "sqp_token"
	cfg.Sonar.ProjectKey = "demo"
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, hclog.NewNullLogger())
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, "Bearer sqp_token", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "demo", q.Get("componentKeys"))
		assert.Equal(t, "BUG", q.Get("types"))
		assert.Equal(t, "false", q.Get("resolved"))
		assert.Equal(t, "BLOCKER,CRITICAL,MAJOR", q.Get("severities"))
		assert.Equal(t, "100", q.Get("ps"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoIssues))
	}))
	defer server.Close()

	list, total, err := newTestClient(t, server.URL, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "AX-1", list[0].Key)
	assert.Equal(t, "AX-2", list[1].Key)
	assert.Nil(t, list[1].Line)
}

func TestFetchReportsServerTotal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 250, "issues": [{"key": "AX-1"}]}`))
	}))
	defer server.Close()

	list, total, err := newTestClient(t, server.URL, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 250, total)
}

func TestFetchMissingConfiguration(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	testCases := []struct {
		name  string
		field string
		mut   func(*config.Config)
	}{
		{name: "token", field: "sonar.token", mut: func(c *config.Config) { c.Sonar.Token = "" }},
		{name: "project", field: "sonar.project_key", mut: func(c *config.Config) { c.Sonar.ProjectKey = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := newTestClient(t, server.URL, tc.mut).Fetch(context.Background())
			var cfgErr *errs.ConfigError
			require.True(t, stderrors.As(err, &cfgErr))
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFetchNetworkErrors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "unauthorized", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{name: "server error", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}},
		{name: "bad json", handler: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			_, _, err := newTestClient(t, server.URL, nil).Fetch(context.Background())
			var netErr *errs.NetworkError
			assert.True(t, stderrors.As(err, &netErr), "got %v", err)
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, _, err := newTestClient(t, url, nil).Fetch(context.Background())
	var netErr *errs.NetworkError
	assert.True(t, stderrors.As(err, &netErr))
}

func TestQueryOverrides(t *testing.T) {
	c := newTestClient(t, "http://sonar", func(cfg *config.Config) {
		cfg.Sonar.Types = []string{"BUG", "VULNERABILITY"}
		cfg.Sonar.Resolved = config.BoolPtr(true)
		cfg.Sonar.PageSize = 50
	})
	q := c.Query()
	assert.Equal(t, "BUG,VULNERABILITY", q["types"])
	assert.Equal(t, "true", q["resolved"])
	assert.Equal(t, "50", q["ps"])
}
