// Package preflight holds the environment checks the provisioner runs: the
// privilege guard before any mutation, and tool-resolution checks after the
// install step.
package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	hostlog "github.com/hostprep/hostprep/pkg/log"
)

// CheckLevel represents the severity level of a preflight check
type CheckLevel int

const (
	// LevelError indicates a critical failure that prevents execution
	LevelError CheckLevel = iota
	// LevelWarn indicates a warning that should be addressed but doesn't block execution
	LevelWarn
	// LevelInfo indicates informational output
	LevelInfo
)

// CheckResult represents the result of a single preflight check
type CheckResult struct {
	Name    string     // Check name
	Level   CheckLevel // Severity level
	Message string     // Human-readable message
	Error   error      // Underlying error (if any)
}

// Check represents a single preflight check
type Check interface {
	// Name returns the check name
	Name() string
	// Run executes the check and returns a CheckResult
	Run(ctx context.Context) CheckResult
}

// Run executes checks in order, logging each result. The first error-level
// result aborts with that check's error; warnings are logged and execution
// continues.
func Run(ctx context.Context, checks ...Check) error {
	for _, check := range checks {
		result := check.Run(ctx)

		switch result.Level {
		case LevelError:
			hostlog.Error("check failed", "check", result.Name, "message", result.Message)
			if result.Error != nil {
				return result.Error
			}
			return fmt.Errorf("%s: %s", result.Name, result.Message)
		case LevelWarn:
			hostlog.Warn("check warning", "check", result.Name, "message", result.Message)
		case LevelInfo:
			hostlog.Info("check passed", "check", result.Name, "message", result.Message)
		}
	}
	return nil
}

// PrivilegeCheck verifies the process runs with administrator privilege.
// EUID is injectable for tests; zero value checks the real process.
type PrivilegeCheck struct {
	EUID *int
}

func (c *PrivilegeCheck) Name() string {
	return "privilege"
}

func (c *PrivilegeCheck) Run(ctx context.Context) CheckResult {
	euid := os.Geteuid()
	if c.EUID != nil {
		euid = *c.EUID
	}
	if euid != 0 {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: "this command must run as root (try sudo)",
			Error:   fmt.Errorf("effective uid is %d, need 0", euid),
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: "running with administrator privilege",
	}
}

// ToolCheck verifies an executable resolves on the command search path.
type ToolCheck struct {
	Tool string

	// LookPath resolves the executable. Defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

func (c *ToolCheck) Name() string {
	return "tool:" + c.Tool
}

func (c *ToolCheck) Run(ctx context.Context) CheckResult {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(c.Tool)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("%s not found on PATH", c.Tool),
			Error:   err,
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("%s resolved to %s", c.Tool, path),
	}
}

// DiskSpaceCheck probes that the filesystem holding Path accepts writes.
// Best-effort: a failed probe warns rather than blocks.
type DiskSpaceCheck struct {
	Path string
}

func (c *DiskSpaceCheck) Name() string {
	return "disk-space"
}

func (c *DiskSpaceCheck) Run(ctx context.Context) CheckResult {
	dir := c.Path
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("cannot prepare %s for the write probe", dir),
			Error:   err,
		}
	}

	testFile := filepath.Join(dir, fmt.Sprintf(".hostprep-write-test-%d", os.Getpid()))
	f, err := os.Create(testFile)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("write probe failed in %s", dir),
			Error:   err,
		}
	}

	chunk := make([]byte, 1024*1024)
	for i := 0; i < 10; i++ {
		if _, err := f.Write(chunk); err != nil {
			f.Close()
			_ = os.Remove(testFile)
			return CheckResult{
				Name:    c.Name(),
				Level:   LevelWarn,
				Message: "low disk space detected",
				Error:   err,
			}
		}
	}
	f.Close()
	_ = os.Remove(testFile)

	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: "disk space appears sufficient",
	}
}
