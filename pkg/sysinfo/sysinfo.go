// Package sysinfo captures the host environment at process start. The
// resulting Session is written once and treated as read-only by every later
// provisioning step.
package sysinfo

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"
)

// Session describes the environment a provisioning run started in.
type Session struct {
	// Start is the wall-clock time the run began.
	Start time.Time

	// User is the effective user the process runs as.
	User string

	// SudoUser is the invoking user when the process was started via sudo,
	// empty otherwise.
	SudoUser string

	// EUID is the effective user id.
	EUID int

	// Hostname is the host's reported name.
	Hostname string

	// Kernel is the running kernel release.
	Kernel string

	// OSRelease is the distribution's PRETTY_NAME, when available.
	OSRelease string
}

// Elevated reports whether the session runs with administrator privilege.
func (s Session) Elevated() bool {
	return s.EUID == 0
}

// Capture gathers the current host environment.
func Capture() Session {
	return capture(procKernelPath, osReleasePath, time.Now())
}

const (
	procKernelPath = "/proc/sys/kernel/osrelease"
	osReleasePath  = "/etc/os-release"
)

func capture(kernelPath, releasePath string, now time.Time) Session {
	s := Session{
		Start:    now,
		EUID:     os.Geteuid(),
		SudoUser: os.Getenv("SUDO_USER"),
	}

	if u, err := user.Current(); err == nil {
		s.User = u.Username
	}
	if host, err := os.Hostname(); err == nil {
		s.Hostname = host
	}
	if data, err := os.ReadFile(kernelPath); err == nil {
		s.Kernel = strings.TrimSpace(string(data))
	}
	s.OSRelease = readPrettyName(releasePath)

	return s
}

// readPrettyName extracts PRETTY_NAME from an os-release file. Returns empty
// string when the file or the field is absent.
func readPrettyName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "PRETTY_NAME=") {
			continue
		}
		value := strings.TrimPrefix(line, "PRETTY_NAME=")
		return strings.Trim(value, `"`)
	}
	return ""
}

// Describe renders the session as key=value pairs for the run log.
func (s Session) Describe() string {
	invoked := s.User
	if s.SudoUser != "" {
		invoked = fmt.Sprintf("%s (via sudo from %s)", s.User, s.SudoUser)
	}
	parts := []string{
		"host=" + s.Hostname,
		"kernel=" + s.Kernel,
		"user=" + invoked,
	}
	if s.OSRelease != "" {
		parts = append(parts, "os="+s.OSRelease)
	}
	return strings.Join(parts, " ")
}
