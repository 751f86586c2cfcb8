// Package git provides a thin layer over the system git binary. It covers
// exactly the operations the provisioner needs: setting a global identity,
// cloning over SSH, and probing the installed version. The design allows a
// future migration to go-git without changing the consumer API.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Client is the version-control capability the provisioner depends on.
type Client interface {
	// SetGlobalIdentity persists user.name and user.email in the global
	// git configuration.
	SetGlobalIdentity(ctx context.Context, name, email string) error

	// Clone clones url into dest.
	Clone(ctx context.Context, url, dest string) error

	// Version returns the installed git version string.
	Version(ctx context.Context) (string, error)
}

// CLI runs the system git binary.
type CLI struct{}

// NewCLI returns a Client backed by the git executable on PATH.
func NewCLI() *CLI {
	return &CLI{}
}

func (c *CLI) SetGlobalIdentity(ctx context.Context, name, email string) error {
	if err := c.configSet(ctx, "user.name", name); err != nil {
		return err
	}
	return c.configSet(ctx, "user.email", email)
}

func (c *CLI) configSet(ctx context.Context, key, value string) error {
	cmd := exec.CommandContext(ctx, "git", "config", "--global", key, value)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git config --global %s failed: %w: %s", key, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (c *CLI) Clone(ctx context.Context, url, dest string) error {
	cmd := exec.CommandContext(ctx, "git", "clone", url, dest)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (c *CLI) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git --version failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// scp-like syntax: user@host:path, the form deploy keys are used with.
var remoteURLPattern = regexp.MustCompile(`^([A-Za-z0-9._-]+)@([A-Za-z0-9.-]+):(.+)$`)

// ValidateRemoteURL checks that url is in SSH-style user@host:path form and
// returns the host component, which the transport configuration is keyed on.
func ValidateRemoteURL(url string) (host string, err error) {
	m := remoteURLPattern.FindStringSubmatch(strings.TrimSpace(url))
	if m == nil {
		return "", fmt.Errorf("repository URL %q is not in user@host:path form (e.g. git@github.com:org/repo.git)", url)
	}
	return m[2], nil
}

// emailPattern is deliberately loose: this is an advisory check, not RFC
// validation. A miss produces a warning, never an abort.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// LooksLikeEmail reports whether s plausibly is an email address.
func LooksLikeEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
