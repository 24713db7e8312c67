package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

var supportedAuthTypes = []string{"none", "http", "ssh-key", "ssh-agent"}

// ValidateConfig checks if the global configurations have valid values.
// Token and project key presence is checked by the issue client when it is used.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateSonarConfig(&cfg.Sonar); err != nil {
		return fmt.Errorf("YAML global config: sonar directive is invalid: %w", err)
	}
	if err := ValidateGitConfig(&cfg.Git); err != nil {
		return fmt.Errorf("YAML global config: git directive is invalid: %w", err)
	}
	if err := ValidateAgentConfig(&cfg.Agent); err != nil {
		return fmt.Errorf("YAML global config: agent directive is invalid: %w", err)
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	return nil
}

// ValidateSonarConfig checks the quality server settings.
func ValidateSonarConfig(sonar *Sonar) error {
	if sonar == nil {
		return fmt.Errorf("sonar configuration is nil")
	}
	u, err := url.ParseRequestURI(sonar.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", sonar.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", sonar.URL)
	}
	if sonar.PageSize < 1 || sonar.PageSize > MaxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d: %d", MaxPageSize, sonar.PageSize)
	}
	return nil
}

// ValidateGitConfig checks if the Git configurations have valid values.
func ValidateGitConfig(gitConfig *Git) error {
	if gitConfig == nil {
		return fmt.Errorf("git configuration is nil")
	}
	if strings.TrimSpace(gitConfig.Branch) == "" {
		return fmt.Errorf("branch must not be empty")
	}
	if !isSupportedAuthType(gitConfig.AuthType) {
		return fmt.Errorf("unsupported auth_type %q, expected one of %s", gitConfig.AuthType, strings.Join(supportedAuthTypes, ", "))
	}
	if gitConfig.AuthType == "ssh-key" && gitConfig.SSHKey == "" {
		return fmt.Errorf("ssh_key is required for auth_type ssh-key")
	}
	if err := validateDuration(gitConfig.Timeout, "timeout", 1*time.Hour); err != nil {
		return err
	}
	return nil
}

// ValidateAgentConfig checks the fixing agent settings.
func ValidateAgentConfig(agent *Agent) error {
	if agent == nil {
		return fmt.Errorf("agent configuration is nil")
	}
	if err := validateDuration(agent.Timeout, "timeout", 2*time.Hour); err != nil {
		return err
	}
	if err := validateDuration(agent.Delay, "delay", 1*time.Minute); err != nil {
		return err
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime,
		"RetryWaitTime":    httpConfig.RetryWaitTime,
		"Timeout":          httpConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}

	return nil
}

func isSupportedAuthType(authType string) bool {
	for _, t := range supportedAuthTypes {
		if t == authType {
			return true
		}
	}
	return false
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}

	if err := validatePort(proxy.Port); err != nil {
		return err
	}

	return nil
}

// validateHost ensures the proxy host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	if _, err := url.Parse(*host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
