package provision

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStepErrorUnwrapsTaxonomy(t *testing.T) {
	inner := &CloneError{
		URL:     "git@github.com:org/repo.git",
		Dest:    "/opt/config",
		KeyPath: "/root/.ssh/deploy_key",
		Host:    "github.com",
		Err:     fmt.Errorf("exit status 128"),
	}
	err := &StepError{Step: "clone", Err: inner}

	var cloneErr *CloneError
	if !errors.As(err, &cloneErr) {
		t.Fatal("StepError should unwrap to CloneError")
	}
	if !strings.Contains(err.Error(), "clone") {
		t.Errorf("StepError should name the step: %v", err)
	}
}

func TestCloneErrorDiagnostics(t *testing.T) {
	e := &CloneError{
		URL:     "git@github.com:org/repo.git",
		Dest:    "/opt/config",
		KeyPath: "/root/.ssh/deploy_key",
		Host:    "github.com",
		Err:     fmt.Errorf("Permission denied (publickey)"),
	}

	diag := e.Diagnostics()
	if !strings.Contains(diag, "ssh -i /root/.ssh/deploy_key -T git@github.com") {
		t.Errorf("diagnostics missing the manual probe command:\n%s", diag)
	}
	if got := strings.Count(diag, "\n  "); got < 3 {
		t.Errorf("diagnostics should enumerate three causes, got:\n%s", diag)
	}
}

func TestPermissionErrorMessage(t *testing.T) {
	e := &PermissionError{EUID: 1000}
	if !strings.Contains(e.Error(), "sudo") {
		t.Errorf("message should point at sudo: %v", e)
	}
	if !strings.Contains(e.Error(), "1000") {
		t.Errorf("message should include the effective uid: %v", e)
	}
}

func TestInstallVerificationErrorNamesTool(t *testing.T) {
	e := &InstallVerificationError{Tool: "ansible", Err: fmt.Errorf("not found")}
	if !strings.Contains(e.Error(), "ansible") {
		t.Errorf("message should name the missing tool: %v", e)
	}
}
