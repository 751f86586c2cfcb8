package provision

import "path/filepath"

// DefaultLogDir is where run logs live.
const DefaultLogDir = "/var/log/hostprep_setup"

// Paths are the filesystem locations a run writes to. They are singleton,
// well-known paths in production; tests point them at temporary directories.
type Paths struct {
	// SSHDir is the SSH home directory (normally ~/.ssh for root).
	SSHDir string

	// DeployKey is the private key file inside SSHDir.
	DeployKey string

	// SSHConfig is the SSH client configuration file inside SSHDir.
	SSHConfig string

	// Destination is the clone target.
	Destination string

	// AnsibleLog is the configuration-management engine's log file, empty
	// for profiles that do not use one.
	AnsibleLog string
}

// DefaultPaths resolves the production paths for a profile given the
// invoking user's home directory.
func DefaultPaths(p Profile, home string) Paths {
	sshDir := filepath.Join(home, ".ssh")
	return Paths{
		SSHDir:      sshDir,
		DeployKey:   filepath.Join(sshDir, "deploy_key"),
		SSHConfig:   filepath.Join(sshDir, "config"),
		Destination: p.Destination,
		AnsibleLog:  p.AnsibleLog,
	}
}
