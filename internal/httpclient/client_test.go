package httpclient

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkarethiya/sonarfix/internal/config"
)

func TestSettingsDefaults(t *testing.T) {
	got := settings(&config.HTTPClient{})
	want := config.DefaultRestyConfig()

	assert.Equal(t, want.RetryCount, got.RetryCount)
	assert.Equal(t, want.Timeout, got.Timeout)
	assert.False(t, got.TLSClientConfig.InsecureSkipVerify)
	assert.Empty(t, got.Proxy)
}

func TestSettingsOverrides(t *testing.T) {
	got := settings(&config.HTTPClient{
		RetryCount:      3,
		Timeout:         5 * time.Second,
		TLSClientConfig: config.TLSClientConfig{Verify: config.BoolPtr(false)},
		Proxy:           config.Proxy{Host: "http://proxy", Port: 3128},
	})

	assert.Equal(t, 3, got.RetryCount)
	assert.Equal(t, 5*time.Second, got.Timeout)
	assert.True(t, got.TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, "http://proxy:3128", got.Proxy)
	assert.False(t, config.DefaultRestyConfig().TLSClientConfig.InsecureSkipVerify)
}

func TestNewSetsBaseURLAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ping", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(hclog.NewNullLogger(), config.Default(), server.URL+"/")
	assert.Equal(t, 30*time.Second, client.GetClient().Timeout)

	resp, err := client.R().SetContext(context.Background()).Get("/api/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
}

func TestNewRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.HTTPClient.RetryCount = 1
	cfg.HTTPClient.RetryWaitTime = time.Millisecond
	cfg.HTTPClient.RetryMaxWaitTime = time.Millisecond

	resp, err := New(hclog.NewNullLogger(), cfg, server.URL).R().Get("/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRetryable(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		err    error
		want   bool
	}{
		{name: "transport error", err: stderrors.New("connection reset"), want: true},
		{name: "too many requests", status: http.StatusTooManyRequests, want: true},
		{name: "bad gateway", status: http.StatusBadGateway, want: true},
		{name: "unauthorized", status: http.StatusUnauthorized, want: false},
		{name: "ok", status: http.StatusOK, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var resp *resty.Response
			if tc.status != 0 {
				resp = &resty.Response{RawResponse: &http.Response{StatusCode: tc.status}}
			}
			assert.Equal(t, tc.want, retryable(resp, tc.err))
		})
	}
}
