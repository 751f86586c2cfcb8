package sysinfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestCaptureReadsKernelAndRelease(t *testing.T) {
	dir := t.TempDir()
	kernel := writeFile(t, dir, "osrelease", "6.8.0-45-generic\n")
	release := writeFile(t, dir, "os-release", strings.Join([]string{
		`NAME="Ubuntu"`,
		`VERSION_ID="24.04"`,
		`PRETTY_NAME="Ubuntu 24.04.1 LTS"`,
	}, "\n"))

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := capture(kernel, release, now)

	if s.Kernel != "6.8.0-45-generic" {
		t.Errorf("Kernel = %q, want 6.8.0-45-generic", s.Kernel)
	}
	if s.OSRelease != "Ubuntu 24.04.1 LTS" {
		t.Errorf("OSRelease = %q, want Ubuntu 24.04.1 LTS", s.OSRelease)
	}
	if !s.Start.Equal(now) {
		t.Errorf("Start = %v, want %v", s.Start, now)
	}
	if s.Hostname == "" {
		t.Error("Hostname should be populated")
	}
}

func TestCaptureMissingFiles(t *testing.T) {
	dir := t.TempDir()
	s := capture(filepath.Join(dir, "nope"), filepath.Join(dir, "also-nope"), time.Now())

	if s.Kernel != "" {
		t.Errorf("Kernel = %q, want empty for missing file", s.Kernel)
	}
	if s.OSRelease != "" {
		t.Errorf("OSRelease = %q, want empty for missing file", s.OSRelease)
	}
}

func TestElevated(t *testing.T) {
	if (Session{EUID: 0}).Elevated() != true {
		t.Error("EUID 0 should be elevated")
	}
	if (Session{EUID: 1000}).Elevated() != false {
		t.Error("EUID 1000 should not be elevated")
	}
}

func TestDescribe(t *testing.T) {
	s := Session{
		Hostname:  "web-01",
		Kernel:    "6.8.0-45-generic",
		User:      "root",
		SudoUser:  "jane",
		OSRelease: "Ubuntu 24.04.1 LTS",
	}
	got := s.Describe()
	for _, want := range []string{"host=web-01", "kernel=6.8.0-45-generic", "via sudo from jane", "os=Ubuntu 24.04.1 LTS"} {
		if !strings.Contains(got, want) {
			t.Errorf("Describe() = %q, missing %q", got, want)
		}
	}
}
