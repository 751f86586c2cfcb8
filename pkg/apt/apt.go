// Package apt wraps the system package manager. The provisioner only ever
// invokes it; nothing here retries, rolls back, or parses package state.
package apt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	hostlog "github.com/hostprep/hostprep/pkg/log"
)

// Manager is the package-manager capability the provisioner depends on.
// Tests substitute a fake; System is the real apt-get implementation.
type Manager interface {
	// Refresh updates the package index.
	Refresh(ctx context.Context) error

	// Upgrade upgrades all installed packages non-interactively.
	Upgrade(ctx context.Context) error

	// Install installs the named packages non-interactively.
	Install(ctx context.Context, pkgs ...string) error

	// AddRepository registers a third-party package source (e.g. a PPA)
	// and refreshes the index afterwards.
	AddRepository(ctx context.Context, repo string) error
}

// System invokes apt-get and add-apt-repository on the host.
type System struct{}

// NewSystem returns a Manager backed by the host's apt tooling.
func NewSystem() *System {
	return &System{}
}

func (s *System) Refresh(ctx context.Context) error {
	return s.run(ctx, "apt-get", "update")
}

func (s *System) Upgrade(ctx context.Context) error {
	return s.run(ctx, "apt-get", "upgrade", "-y")
}

func (s *System) Install(ctx context.Context, pkgs ...string) error {
	if len(pkgs) == 0 {
		return nil
	}
	args := append([]string{"install", "-y"}, pkgs...)
	return s.run(ctx, "apt-get", args...)
}

func (s *System) AddRepository(ctx context.Context, repo string) error {
	if err := s.run(ctx, "add-apt-repository", "-y", repo); err != nil {
		return err
	}
	// A new source is invisible until the index is refreshed.
	return s.Refresh(ctx)
}

// run executes a package-manager command with interactive prompts disabled.
// Output is kept for the run log; on failure the trailing output is folded
// into the returned error so the log shows what apt actually said.
func (s *System) run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")

	hostlog.Debugf("exec: %s %s", name, strings.Join(args, " "))
	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		hostlog.Debugf("%s output:\n%s", name, strings.TrimSpace(string(output)))
	}
	if err != nil {
		return fmt.Errorf("%s %s failed: %w: %s", name, strings.Join(args, " "), err, tail(string(output), 20))
	}
	return nil
}

// tail returns the last n lines of s, for error messages that should show
// the relevant end of a long apt transcript.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
