package httpclient

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/jkarethiya/sonarfix/internal/config"
)

const userAgent = "sonarfix"

// restyLogger forwards resty's retry and debug output to hclog.
type restyLogger struct {
	logger hclog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.log(hclog.Error, format, v) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.log(hclog.Warn, format, v) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.log(hclog.Debug, format, v) }

func (l restyLogger) log(level hclog.Level, format string, v []interface{}) {
	l.logger.Log(level, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// New returns a resty client for the quality server at baseURL, configured from cfg.HTTPClient.
// Transport failures, 429 and 5xx answers are retried when a retry count is configured.
func New(logger hclog.Logger, cfg *config.Config, baseURL string) *resty.Client {
	s := settings(&cfg.HTTPClient)

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetDebug(s.Debug).
		SetRetryCount(s.RetryCount).
		SetRetryWaitTime(s.RetryWaitTime).
		SetRetryMaxWaitTime(s.RetryMaxWaitTime).
		SetTimeout(s.Timeout).
		SetTLSClientConfig(s.TLSClientConfig).
		AddRetryCondition(retryable)
	if logger != nil {
		client.SetLogger(restyLogger{logger: logger.Named("http")})
	}
	if s.Proxy != "" {
		client.SetProxy(s.Proxy)
	}
	return client
}

func retryable(resp *resty.Response, err error) bool {
	if err != nil || resp == nil {
		return true
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// settings merges the configured HTTP options over the defaults.
func settings(httpConfig *config.HTTPClient) config.RestyHTTPClientConfig {
	s := config.DefaultRestyConfig()
	s.TLSClientConfig = s.TLSClientConfig.Clone()
	if httpConfig == nil {
		return s
	}

	s.Debug = config.GetBoolValue(httpConfig, "Debug", s.Debug)
	s.RetryCount = config.SetThen(httpConfig.RetryCount, s.RetryCount)
	s.RetryWaitTime = config.SetThen(httpConfig.RetryWaitTime, s.RetryWaitTime)
	s.RetryMaxWaitTime = config.SetThen(httpConfig.RetryMaxWaitTime, s.RetryMaxWaitTime)
	s.Timeout = config.SetThen(httpConfig.Timeout, s.Timeout)
	s.TLSClientConfig.InsecureSkipVerify = !config.GetBoolValue(httpConfig.TLSClientConfig, "Verify", true)
	if p := httpConfig.Proxy; p.Host != "" && p.Port != 0 {
		s.Proxy = fmt.Sprintf("%s:%d", p.Host, p.Port)
	}
	return s
}
