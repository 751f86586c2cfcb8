package provision

import (
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	hostlog "github.com/hostprep/hostprep/pkg/log"
)

// applyPostClonePolicy applies the profile's permission policy to a freshly
// cloned destination. Script marking is best-effort; the tightening of the
// tree and playbook restriction are not.
func applyPostClonePolicy(p Profile, paths Paths) error {
	if p.GroupReadable {
		if err := tightenTree(paths.Destination); err != nil {
			return err
		}
	}

	markExecutableScripts(paths.Destination, p.ExecutableDirs)

	if p.RestrictPlaybooks {
		if err := restrictPlaybooks(paths.Destination); err != nil {
			return err
		}
	}

	if paths.AnsibleLog != "" {
		if err := ensureEngineLog(paths.AnsibleLog); err != nil {
			return err
		}
	}
	return nil
}

// tightenTree removes world access from everything under root: directories
// become 0750, files keep owner/group bits and lose world bits.
func tightenTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		mode := info.Mode().Perm()
		if d.IsDir() {
			mode = 0750
		} else {
			mode &^= 0007
		}
		if err := os.Chmod(path, mode); err != nil {
			return fmt.Errorf("failed to tighten %s: %w", path, err)
		}
		return nil
	})
}

// markExecutableScripts marks shell scripts under the named destination
// subdirectories executable. Absent subdirectories are not an error; a
// chmod failure on an individual script is logged and skipped.
func markExecutableScripts(root string, subdirs []string) {
	for _, sub := range subdirs {
		dir := filepath.Join(root, sub)
		if _, err := os.Stat(dir); err != nil {
			hostlog.Debug("script directory absent, skipping", "dir", dir)
			continue
		}
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".sh") {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			mode := info.Mode().Perm() | 0100
			if mode&0040 != 0 {
				mode |= 0010
			}
			if err := os.Chmod(path, mode); err != nil {
				hostlog.Warn("failed to mark script executable", "path", path, "error", err)
			}
			return nil
		})
	}
}

// restrictPlaybooks restricts declarative playbook files under root to
// owner read/write, group read.
func restrictPlaybooks(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ".yml") && !strings.HasSuffix(name, ".yaml") {
			return nil
		}
		if err := os.Chmod(path, 0640); err != nil {
			return fmt.Errorf("failed to restrict playbook %s: %w", path, err)
		}
		return nil
	})
}

// ensureEngineLog creates the configuration-management engine's log file
// group-readable, owned by root:adm when that group exists.
func ensureEngineLog(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0664)
	if err != nil {
		return fmt.Errorf("failed to prepare engine log %s: %w", path, err)
	}
	f.Close()
	if err := os.Chmod(path, 0664); err != nil {
		return fmt.Errorf("failed to set engine log mode on %s: %w", path, err)
	}

	// Group ownership is best-effort: the adm group exists on Ubuntu but
	// not necessarily in test environments.
	if grp, err := user.LookupGroup("adm"); err == nil {
		if gid, err := strconv.Atoi(grp.Gid); err == nil {
			if err := os.Chown(path, 0, gid); err != nil {
				hostlog.Debug("could not chown engine log", "path", path, "error", err)
			}
		}
	}
	return nil
}
