package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func intPtr(i int) *int { return &i }

func TestPrivilegeCheck(t *testing.T) {
	tests := []struct {
		name  string
		euid  int
		level CheckLevel
	}{
		{"root passes", 0, LevelInfo},
		{"regular user fails", 1000, LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := &PrivilegeCheck{EUID: intPtr(tt.euid)}
			result := check.Run(context.Background())
			if result.Level != tt.level {
				t.Errorf("level = %v, want %v (message: %s)", result.Level, tt.level, result.Message)
			}
		})
	}
}

func TestPrivilegeCheckMentionsSudo(t *testing.T) {
	check := &PrivilegeCheck{EUID: intPtr(1000)}
	result := check.Run(context.Background())
	if !strings.Contains(result.Message, "sudo") {
		t.Errorf("message should point the operator at sudo: %q", result.Message)
	}
}

func TestToolCheckFound(t *testing.T) {
	// The go toolchain runs the tests, so "go" must be resolvable.
	check := &ToolCheck{Tool: "go"}
	result := check.Run(context.Background())
	if result.Level != LevelInfo {
		t.Errorf("level = %v, want LevelInfo (message: %s)", result.Level, result.Message)
	}
}

func TestToolCheckMissing(t *testing.T) {
	check := &ToolCheck{Tool: "definitely-not-a-real-tool-hostprep"}
	result := check.Run(context.Background())
	if result.Level != LevelError {
		t.Errorf("level = %v, want LevelError", result.Level)
	}
	if !strings.Contains(result.Message, "definitely-not-a-real-tool-hostprep") {
		t.Errorf("message should name the missing tool: %q", result.Message)
	}
}

func TestToolCheckInjectedLookPath(t *testing.T) {
	var asked string
	check := &ToolCheck{
		Tool: "ansible",
		LookPath: func(tool string) (string, error) {
			asked = tool
			return "/usr/bin/ansible", nil
		},
	}

	result := check.Run(context.Background())
	if result.Level != LevelInfo {
		t.Errorf("level = %v, want LevelInfo", result.Level)
	}
	if asked != "ansible" {
		t.Errorf("injected resolver asked for %q, want ansible", asked)
	}
	if !strings.Contains(result.Message, "/usr/bin/ansible") {
		t.Errorf("message should carry the resolved path: %q", result.Message)
	}
}

func TestDiskSpaceCheckWritesUnderConfiguredPath(t *testing.T) {
	// The check must exercise the configured filesystem, not the temp
	// directory: a nested path only exists afterwards if the writes
	// landed there.
	dir := filepath.Join(t.TempDir(), "opt")
	check := &DiskSpaceCheck{Path: dir}

	result := check.Run(context.Background())
	if result.Level == LevelError {
		t.Fatalf("disk space check should never be fatal: %s", result.Message)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("configured path was never touched: %v", err)
	}
}

func TestRunStopsAtFirstError(t *testing.T) {
	ran := []string{}
	passing := checkFunc{name: "ok", run: func() CheckResult {
		ran = append(ran, "ok")
		return CheckResult{Name: "ok", Level: LevelInfo}
	}}
	failing := checkFunc{name: "bad", run: func() CheckResult {
		ran = append(ran, "bad")
		return CheckResult{Name: "bad", Level: LevelError, Message: "boom"}
	}}
	after := checkFunc{name: "after", run: func() CheckResult {
		ran = append(ran, "after")
		return CheckResult{Name: "after", Level: LevelInfo}
	}}

	err := Run(context.Background(), passing, failing, after)
	if err == nil {
		t.Fatal("Run() should surface the failing check")
	}
	if len(ran) != 2 {
		t.Errorf("checks run = %v, want stop after the failure", ran)
	}
}

func TestRunWarningsDoNotAbort(t *testing.T) {
	warning := checkFunc{name: "warn", run: func() CheckResult {
		return CheckResult{Name: "warn", Level: LevelWarn, Message: "heads up"}
	}}
	if err := Run(context.Background(), warning); err != nil {
		t.Errorf("Run() with only warnings should succeed, got %v", err)
	}
}

func TestDiskSpaceCheck(t *testing.T) {
	check := &DiskSpaceCheck{Path: t.TempDir()}
	result := check.Run(context.Background())
	if result.Level == LevelError {
		t.Errorf("disk space check should never be fatal, got error: %s", result.Message)
	}
	t.Logf("DiskSpaceCheck result: level=%d, message=%s", result.Level, result.Message)
}

// checkFunc adapts a closure to the Check interface for driver tests.
type checkFunc struct {
	name string
	run  func() CheckResult
}

func (c checkFunc) Name() string                        { return c.name }
func (c checkFunc) Run(ctx context.Context) CheckResult { return c.run() }
