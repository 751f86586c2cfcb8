// Package sshconf manages the SSH artifacts the provisioner produces: the
// deploy key file and the per-host client configuration. Writes are single
// complete files with owner-only permissions enforced after the write, so a
// restrictive mode holds regardless of the umask in effect.
package sshconf

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"
)

// EnsureDir creates dir with owner-only access. Creation is idempotent; an
// existing directory is re-tightened rather than treated as an error.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.Chmod(dir, 0700); err != nil {
		return fmt.Errorf("failed to restrict %s: %w", dir, err)
	}
	return nil
}

// WriteDeployKey persists private key material verbatim and restricts the
// file to owner read/write. The material is not validated here; a bad key
// surfaces at clone time.
func WriteDeployKey(path, material string) error {
	if !strings.HasSuffix(material, "\n") {
		material += "\n"
	}
	if err := os.WriteFile(path, []byte(material), 0600); err != nil {
		return fmt.Errorf("failed to write deploy key %s: %w", path, err)
	}
	// WriteFile's mode is masked by the umask; chmod after the fact so the
	// bits are exact.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to restrict deploy key %s: %w", path, err)
	}
	return nil
}

// BackupConfig copies an existing config file to a timestamp-suffixed
// sibling. The original is left in place and no existing backup is ever
// overwritten; when the timestamped name is taken a numeric suffix is added.
// Returns the backup path, or empty string when there was nothing to back up.
func BackupConfig(path string, now time.Time) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read existing config %s: %w", path, err)
	}

	base := fmt.Sprintf("%s.bak.%s", path, now.Format("20060102-150405"))
	for i := 0; ; i++ {
		backup := base
		if i > 0 {
			backup = fmt.Sprintf("%s.%d", base, i)
		}
		f, err := os.OpenFile(backup, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", fmt.Errorf("failed to create backup %s: %w", backup, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write backup %s: %w", backup, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close backup %s: %w", backup, err)
		}
		return backup, nil
	}
}

// HostConfig describes the per-host block written for the repository host.
type HostConfig struct {
	// Host is the source-control hostname the block applies to.
	Host string

	// IdentityFile is the deploy key path.
	IdentityFile string

	// User is the SSH user, normally "git".
	User string
}

// Render produces the SSH client configuration for the host block.
// StrictHostKeyChecking is relaxed so a first clone on a fresh host does not
// stall on an interactive host-key prompt.
func (h HostConfig) Render() string {
	user := h.User
	if user == "" {
		user = "git"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Host %s\n", h.Host)
	fmt.Fprintf(&b, "    HostName %s\n", h.Host)
	fmt.Fprintf(&b, "    User %s\n", user)
	fmt.Fprintf(&b, "    IdentityFile %s\n", h.IdentityFile)
	b.WriteString("    IdentitiesOnly yes\n")
	b.WriteString("    StrictHostKeyChecking accept-new\n")
	return b.String()
}

// WriteHostConfig writes the transport configuration for h to path with
// owner-only permissions. The rendered config is parsed back before writing;
// a config the SSH client cannot read would otherwise only surface as an
// opaque clone failure.
func WriteHostConfig(path string, h HostConfig) error {
	if h.Host == "" {
		return fmt.Errorf("host config requires a hostname")
	}
	rendered := h.Render()

	cfg, err := ssh_config.Decode(bytes.NewReader([]byte(rendered)))
	if err != nil {
		return fmt.Errorf("generated ssh config does not parse: %w", err)
	}
	if got := identityFileFor(cfg, h.Host); got != h.IdentityFile {
		return fmt.Errorf("generated ssh config resolves IdentityFile to %q, want %q", got, h.IdentityFile)
	}

	if err := os.WriteFile(path, []byte(rendered), 0600); err != nil {
		return fmt.Errorf("failed to write ssh config %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to restrict ssh config %s: %w", path, err)
	}
	return nil
}

// identityFileFor resolves the IdentityFile a parsed config yields for host.
func identityFileFor(cfg *ssh_config.Config, host string) string {
	value, err := cfg.Get(host, "IdentityFile")
	if err != nil {
		return ""
	}
	return value
}
