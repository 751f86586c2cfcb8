package provision

import (
	"fmt"
	"strings"
)

// PermissionError reports a run started without administrator privilege.
// It is raised before any mutating step.
type PermissionError struct {
	EUID int
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("administrator privilege required (effective uid %d); re-run with sudo", e.EUID)
}

// PackageManagerError reports a failed package-manager operation.
type PackageManagerError struct {
	Op  string // "refresh", "upgrade", "install", "add-repository"
	Err error
}

func (e *PackageManagerError) Error() string {
	return fmt.Sprintf("package manager %s failed: %v", e.Op, e.Err)
}

func (e *PackageManagerError) Unwrap() error { return e.Err }

// InstallVerificationError reports that a required tool did not resolve on
// the command search path after the install step.
type InstallVerificationError struct {
	Tool string
	Err  error
}

func (e *InstallVerificationError) Error() string {
	return fmt.Sprintf("%s is not on PATH after installation", e.Tool)
}

func (e *InstallVerificationError) Unwrap() error { return e.Err }

// CredentialWriteError reports a failure to persist SSH material.
type CredentialWriteError struct {
	Path string
	Err  error
}

func (e *CredentialWriteError) Error() string {
	return fmt.Sprintf("failed to write credential artifact %s: %v", e.Path, e.Err)
}

func (e *CredentialWriteError) Unwrap() error { return e.Err }

// CloneError reports a failed repository clone. Diagnostics enumerate the
// most likely root causes so the operator is not left with a bare git error.
type CloneError struct {
	URL     string
	Dest    string
	KeyPath string
	Host    string
	Err     error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("failed to clone %s into %s: %v", e.URL, e.Dest, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

// Diagnostics returns a human-readable explanation of the likely causes and
// a command the operator can run to probe the transport by hand.
func (e *CloneError) Diagnostics() string {
	var b strings.Builder
	b.WriteString("The clone failed. The three most likely causes:\n")
	b.WriteString("  1. the deploy key is not registered for the repository upstream\n")
	fmt.Fprintf(&b, "  2. the repository URL is wrong: %s\n", e.URL)
	fmt.Fprintf(&b, "  3. the transport configuration is malformed (check %s)\n", e.Host)
	fmt.Fprintf(&b, "To probe the transport manually, run:\n  ssh -i %s -T git@%s\n", e.KeyPath, e.Host)
	return b.String()
}

// StepError tags a fatal error with the provisioning step it occurred in.
// Prior steps' effects stay on disk; there is no rollback.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
