package config

import (
	"fmt"
	"sort"
	"strings"
)

// setting binds a user-facing key to a string field of the configuration.
type setting struct {
	key    string
	alias  string
	secret bool
	field  func(cfg *Config) *string
}

var settings = []setting{
	{key: "sonar.url", alias: "sonarUrl", field: func(c *Config) *string { return &c.Sonar.URL }},
	{key: "sonar.token", alias: "sonarToken", secret: true, field: func(c *Config) *string { return &c.Sonar.Token }},
	{key: "sonar.project_key", alias: "projectKey", field: func(c *Config) *string { return &c.Sonar.ProjectKey }},
	{key: "git.branch", alias: "gitBranch", field: func(c *Config) *string { return &c.Git.Branch }},
	{key: "git.remote", field: func(c *Config) *string { return &c.Git.Remote }},
	{key: "git.auth_type", field: func(c *Config) *string { return &c.Git.AuthType }},
	{key: "git.username", field: func(c *Config) *string { return &c.Git.Username }},
	{key: "git.token", secret: true, field: func(c *Config) *string { return &c.Git.Token }},
	{key: "agent.command", field: func(c *Config) *string { return &c.Agent.Command }},
	{key: "agent.install_url", field: func(c *Config) *string { return &c.Agent.InstallURL }},
	{key: "editor.command", field: func(c *Config) *string { return &c.Editor.Command }},
	{key: "workspace.root", field: func(c *Config) *string { return &c.Workspace.Root }},
	{key: "logger.level", field: func(c *Config) *string { return &c.Logger.Level }},
}

func lookupSetting(key string) (setting, bool) {
	for _, s := range settings {
		if strings.EqualFold(s.key, key) || (s.alias != "" && strings.EqualFold(s.alias, key)) {
			return s, true
		}
	}
	return setting{}, false
}

// SetValue assigns value to the setting named key. Both the YAML path
// ("sonar.token") and the short name ("sonarToken") are accepted.
func SetValue(cfg *Config, key, value string) error {
	s, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("unknown configuration key %q (known keys: %s)", key, strings.Join(Keys(), ", "))
	}
	*s.field(cfg) = value
	return nil
}

// Keys lists the settable configuration keys.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for _, s := range settings {
		keys = append(keys, s.key)
	}
	sort.Strings(keys)
	return keys
}

// Entry is one displayed configuration value.
type Entry struct {
	Key   string
	Value string
}

// Entries returns the settable values with secrets masked.
func Entries(cfg *Config) []Entry {
	entries := make([]Entry, 0, len(settings))
	for _, s := range settings {
		v := *s.field(cfg)
		if s.secret {
			v = Mask(v)
		}
		entries = append(entries, Entry{Key: s.key, Value: v})
	}
	return entries
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
