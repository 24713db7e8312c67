package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigFile is looked up in the working directory when no --config flag is given.
const DefaultConfigFile = "config.yml"

const (
	DefaultSonarURL     = "http://localhost:9000"
	DefaultGitBranch    = "sonar-auto-fix"
	DefaultGitRemote    = "origin"
	DefaultPageSize     = 100
	MaxPageSize         = 500
	DefaultAgentDelay   = 1 * time.Second
	DefaultAgentTimeout = 10 * time.Minute
	DefaultSessionLog   = "~/.sonarfix/session.log"
)

// Config is the root of the sonarfix configuration file.
type Config struct {
	Sonar      Sonar      `yaml:"sonar"`
	Git        Git        `yaml:"git"`
	Agent      Agent      `yaml:"agent"`
	Editor     Editor     `yaml:"editor"`
	Workspace  Workspace  `yaml:"workspace"`
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
}

// Sonar holds the quality server connection and the issue filters.
type Sonar struct {
	URL        string   `yaml:"url"`
	Token      string   `yaml:"token"`
	ProjectKey string   `yaml:"project_key"`
	Types      []string `yaml:"types"`
	Severities []string `yaml:"severities"`
	Resolved   *bool    `yaml:"resolved"`
	PageSize   int      `yaml:"page_size"`
}

// Git holds the version control settings of the remediation branch.
type Git struct {
	Branch         string        `yaml:"branch"`
	Remote         string        `yaml:"remote"`
	AuthType       string        `yaml:"auth_type"`
	Username       string        `yaml:"username"`
	Token          string        `yaml:"token"`
	SSHKey         string        `yaml:"ssh_key"`
	SSHKeyPassword string        `yaml:"ssh_key_password"`
	AuthorName     string        `yaml:"author_name"`
	AuthorEmail    string        `yaml:"author_email"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Agent describes the external fixing agent CLI.
type Agent struct {
	Command     string        `yaml:"command"`
	Args        []string      `yaml:"args"`
	MessageArgs []string      `yaml:"message_args"`
	ProbeArgs   []string      `yaml:"probe_args"`
	InstallURL  string        `yaml:"install_url"`
	Prompt      string        `yaml:"prompt"`
	Timeout     time.Duration `yaml:"timeout"`
	Delay       time.Duration `yaml:"delay"`
}

// Editor describes the command used to open a file at a given line.
type Editor struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type Workspace struct {
	Root string `yaml:"root"`
}

type Logger struct {
	Level           string `yaml:"level"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
	SessionLog      string `yaml:"session_log"`
}

type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads the YAML file at configPath, applies defaults and environment overrides.
// When required is false a missing file yields the default configuration.
func LoadConfig(configPath string, required bool) (*Config, error) {
	cfg := &Config{}

	if err := LoadYAML(configPath, cfg); err != nil {
		if required || !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyDefaults(cfg)
	applyEnvironment(cfg)
	return cfg, nil
}

// ValidateConfigPath makes sure the path exists and is a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return fmt.Errorf("failed to decode %q: %w", configPath, err)
	}

	return nil
}

// Save writes the configuration to path, creating parent folders when needed.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config folder %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %q: %w", path, err)
	}
	return nil
}

// applyDefaults fills every unset field with its default value.
func applyDefaults(cfg *Config) {
	cfg.Sonar.URL = SetThen(cfg.Sonar.URL, DefaultSonarURL)
	if len(cfg.Sonar.Types) == 0 {
		cfg.Sonar.Types = []string{"BUG"}
	}
	if len(cfg.Sonar.Severities) == 0 {
		cfg.Sonar.Severities = []string{"BLOCKER", "CRITICAL", "MAJOR"}
	}
	cfg.Sonar.PageSize = SetThen(cfg.Sonar.PageSize, DefaultPageSize)

	cfg.Git.Branch = SetThen(cfg.Git.Branch, DefaultGitBranch)
	cfg.Git.Remote = SetThen(cfg.Git.Remote, DefaultGitRemote)
	cfg.Git.AuthType = SetThen(cfg.Git.AuthType, "none")
	cfg.Git.Timeout = SetThen(cfg.Git.Timeout, 5*time.Minute)

	if len(cfg.Agent.ProbeArgs) == 0 {
		cfg.Agent.ProbeArgs = []string{"--version"}
	}
	cfg.Agent.Timeout = SetThen(cfg.Agent.Timeout, DefaultAgentTimeout)
	cfg.Agent.Delay = SetThen(cfg.Agent.Delay, DefaultAgentDelay)

	cfg.Logger.SessionLog = SetThen(cfg.Logger.SessionLog, DefaultSessionLog)
}

// applyEnvironment lets environment variables override the file values.
func applyEnvironment(cfg *Config) {
	envVars := map[string]*string{
		"SONARFIX_SONAR_URL":     &cfg.Sonar.URL,
		"SONARFIX_SONAR_TOKEN":   &cfg.Sonar.Token,
		"SONARFIX_PROJECT_KEY":   &cfg.Sonar.ProjectKey,
		"SONARFIX_GIT_BRANCH":    &cfg.Git.Branch,
		"SONARFIX_GIT_TOKEN":     &cfg.Git.Token,
		"SONARFIX_AGENT_COMMAND": &cfg.Agent.Command,
		"SONARFIX_WORKSPACE":     &cfg.Workspace.Root,
	}

	for env, val := range envVars {
		if v := os.Getenv(env); v != "" {
			*val = v
		}
	}
}

// IsResolvedFilter reports the value of the "resolved" query filter.
func IsResolvedFilter(cfg *Config) bool {
	return GetBoolValue(cfg, "Sonar.Resolved", false)
}

// WorkspaceRoot returns the configured workspace root or the current directory.
func WorkspaceRoot(cfg *Config) (string, error) {
	root := cfg.Workspace.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		root = wd
	}
	expanded, err := ExpandPath(root)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}
