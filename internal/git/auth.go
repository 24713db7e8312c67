package git

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/hashicorp/go-hclog"

	crssh "golang.org/x/crypto/ssh"

	"github.com/jkarethiya/sonarfix/internal/config"
)

// Authenticator defines an interface for different authentication methods.
type Authenticator interface {
	SetupAuth(cfg config.Git, logger hclog.Logger) (transport.AuthMethod, error)
	ValidateConfig(cfg config.Git) error
}

// NoneAuthenticator leaves authentication to go-git defaults.
type NoneAuthenticator struct{}

// SSHKeyAuthenticator provides SSH key-based authentication.
type SSHKeyAuthenticator struct{}

// SSHAgentAuthenticator provides SSH agent-based authentication.
type SSHAgentAuthenticator struct{}

// HTTPAuthenticator provides HTTP basic authentication with a token.
type HTTPAuthenticator struct{}

func (n *NoneAuthenticator) SetupAuth(config.Git, hclog.Logger) (transport.AuthMethod, error) {
	return nil, nil
}

func (n *NoneAuthenticator) ValidateConfig(config.Git) error {
	return nil
}

// SetupAuth configures SSH key authentication.
func (s *SSHKeyAuthenticator) SetupAuth(cfg config.Git, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up SSH key authentication")

	sshKeyPath, err := config.ExpandPath(cfg.SSHKey)
	if err != nil {
		logger.Error("failed to expand SSH key path", "path", cfg.SSHKey, "error", err)
		return nil, err
	}

	auth, err := ssh.NewPublicKeysFromFile("git", sshKeyPath, cfg.SSHKeyPassword)
	if err != nil {
		logger.Error("failed to set up SSH key authentication", "error", err.Error())
		return nil, err
	}
	auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
		HostKeyCallback: crssh.InsecureIgnoreHostKey(),
	}
	return auth, nil
}

// ValidateConfig validates the configuration for SSHKeyAuthenticator.
func (s *SSHKeyAuthenticator) ValidateConfig(cfg config.Git) error {
	if cfg.SSHKey == "" {
		return fmt.Errorf("git.ssh_key is required for ssh-key authentication")
	}
	return nil
}

// SetupAuth configures SSH agent authentication.
func (s *SSHAgentAuthenticator) SetupAuth(cfg config.Git, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up SSH agent authentication")

	auth, err := ssh.NewSSHAgentAuth("git")
	if err != nil {
		logger.Error("failed to set up SSH agent authentication", "error", err)
		return nil, err
	}
	auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
		HostKeyCallback: crssh.InsecureIgnoreHostKey(),
	}
	return auth, nil
}

// ValidateConfig validates the configuration for SSHAgentAuthenticator.
func (s *SSHAgentAuthenticator) ValidateConfig(config.Git) error {
	return nil
}

// SetupAuth configures HTTP basic authentication.
func (h *HTTPAuthenticator) SetupAuth(cfg config.Git, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up HTTP authentication")

	username := config.SetThen(cfg.Username, "x-access-token")
	return &http.BasicAuth{
		Username: username,
		Password: cfg.Token,
	}, nil
}

// ValidateConfig validates the configuration for HTTPAuthenticator.
func (h *HTTPAuthenticator) ValidateConfig(cfg config.Git) error {
	if cfg.Token == "" {
		return fmt.Errorf("git.token is required for http authentication")
	}
	return nil
}

// getAuthenticator returns the appropriate Authenticator based on the authentication type.
func getAuthenticator(authType string) (Authenticator, error) {
	switch authType {
	case "", "none":
		return &NoneAuthenticator{}, nil
	case "ssh-key":
		return &SSHKeyAuthenticator{}, nil
	case "ssh-agent":
		return &SSHAgentAuthenticator{}, nil
	case "http":
		return &HTTPAuthenticator{}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", authType)
	}
}
