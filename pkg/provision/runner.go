package provision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/hostprep/hostprep/pkg/apt"
	"github.com/hostprep/hostprep/pkg/credential"
	"github.com/hostprep/hostprep/pkg/git"
	hostlog "github.com/hostprep/hostprep/pkg/log"
	"github.com/hostprep/hostprep/pkg/preflight"
	"github.com/hostprep/hostprep/pkg/sshconf"
	"github.com/hostprep/hostprep/pkg/sysinfo"
)

// Deps are the external collaborators a run invokes. All are interfaces so
// tests can substitute fakes; none are reimplemented here.
type Deps struct {
	Pkg   apt.Manager
	Git   git.Client
	Creds credential.Source

	// LookPath resolves a tool on the command search path. Defaults to
	// exec.LookPath.
	LookPath func(string) (string, error)
}

// Runner executes the provisioning sequence for one profile. Steps run in a
// fixed order; the first failure aborts the run with a StepError and leaves
// all prior effects on disk.
type Runner struct {
	profile Profile
	paths   Paths
	session sysinfo.Session
	deps    Deps

	// resolved during the run
	repoURL  string
	repoHost string
}

// New constructs a Runner. The logger is expected to be initialized already
// (with the run-log file attached) by the caller.
func New(profile Profile, paths Paths, session sysinfo.Session, deps Deps) *Runner {
	if deps.LookPath == nil {
		deps.LookPath = exec.LookPath
	}
	return &Runner{
		profile: profile,
		paths:   paths,
		session: session,
		deps:    deps,
	}
}

// Summary describes where a successful run left its artifacts.
type Summary struct {
	Destination string
	RepoURL     string
	DeployKey   string
}

// Summary returns the artifact locations of a completed run.
func (r *Runner) Summary() Summary {
	return Summary{
		Destination: r.paths.Destination,
		RepoURL:     r.repoURL,
		DeployKey:   r.paths.DeployKey,
	}
}

type step struct {
	name string
	fn   func(ctx context.Context) error
}

// Run executes the full sequence. The privilege guard runs before any
// mutating step; afterwards each step is fail-fast with no retries, no
// timeouts, and no rollback.
func (r *Runner) Run(ctx context.Context) error {
	euid := r.session.EUID
	priv := &preflight.PrivilegeCheck{EUID: &euid}
	if result := priv.Run(ctx); result.Level == preflight.LevelError {
		return &PermissionError{EUID: r.session.EUID}
	}

	steps := []step{
		{"environment", r.stepEnvironment},
		{"package-index-refresh", r.stepRefresh},
		{"package-upgrade", r.stepUpgrade},
		{"package-install", r.stepInstall},
		{"identity", r.stepIdentity},
		{"credentials", r.stepCredentials},
		{"transport", r.stepTransport},
		{"clone", r.stepClone},
	}

	for _, s := range steps {
		hostlog.Info("step starting", "step", s.name)
		if err := s.fn(ctx); err != nil {
			hostlog.Error("step failed", "step", s.name, "error", err)
			return &StepError{Step: s.name, Err: err}
		}
		hostlog.Info("step complete", "step", s.name)
	}

	hostlog.Info("bootstrap complete",
		"profile", r.profile.Name,
		"destination", r.paths.Destination,
		"elapsed", time.Since(r.session.Start).Round(time.Second),
	)
	return nil
}

func (r *Runner) stepEnvironment(ctx context.Context) error {
	hostlog.Info("environment", "session", r.session.Describe())
	return nil
}

func (r *Runner) stepRefresh(ctx context.Context) error {
	if err := r.deps.Pkg.Refresh(ctx); err != nil {
		return &PackageManagerError{Op: "refresh", Err: err}
	}
	return nil
}

func (r *Runner) stepUpgrade(ctx context.Context) error {
	if err := r.deps.Pkg.Upgrade(ctx); err != nil {
		return &PackageManagerError{Op: "upgrade", Err: err}
	}
	return nil
}

func (r *Runner) stepInstall(ctx context.Context) error {
	if r.profile.AptRepository != "" {
		hostlog.Info("registering package source", "repository", r.profile.AptRepository)
		if err := r.deps.Pkg.AddRepository(ctx, r.profile.AptRepository); err != nil {
			return &PackageManagerError{Op: "add-repository", Err: err}
		}
	}

	hostlog.Info("installing packages", "packages", r.profile.Packages)
	if err := r.deps.Pkg.Install(ctx, r.profile.Packages...); err != nil {
		return &PackageManagerError{Op: "install", Err: err}
	}

	// Installation is only done when the tools actually resolve.
	for _, tool := range r.profile.RequiredTools {
		check := &preflight.ToolCheck{Tool: tool, LookPath: r.deps.LookPath}
		result := check.Run(ctx)
		if result.Level == preflight.LevelError {
			return &InstallVerificationError{Tool: tool, Err: result.Error}
		}
		hostlog.Debug("tool verified", "tool", tool, "message", result.Message)
	}

	// Record the installed client version in the run log. Advisory: the
	// tool already resolved above.
	if version, err := r.deps.Git.Version(ctx); err == nil {
		hostlog.Info("version-control client ready", "version", version)
	} else {
		hostlog.Warn("could not read git version", "error", err)
	}
	return nil
}

func (r *Runner) stepIdentity(ctx context.Context) error {
	name, email, err := r.deps.Creds.Identity(ctx)
	if err != nil {
		return fmt.Errorf("failed to capture commit identity: %w", err)
	}
	if name == "" || email == "" {
		return fmt.Errorf("commit author name and email must not be empty")
	}

	// Advisory only: a strange-looking email is logged, never a gate.
	if !git.LooksLikeEmail(email) {
		hostlog.Warn("email address looks malformed, continuing anyway", "email", email)
	}

	if err := r.deps.Git.SetGlobalIdentity(ctx, name, email); err != nil {
		return fmt.Errorf("failed to persist commit identity: %w", err)
	}
	hostlog.Info("commit identity configured", "name", name, "email", email)
	return nil
}

func (r *Runner) stepCredentials(ctx context.Context) error {
	if err := sshconf.EnsureDir(r.paths.SSHDir); err != nil {
		return &CredentialWriteError{Path: r.paths.SSHDir, Err: err}
	}

	material, err := r.deps.Creds.PrivateKey(ctx)
	if err != nil {
		return fmt.Errorf("failed to capture deploy key: %w", err)
	}

	if err := sshconf.WriteDeployKey(r.paths.DeployKey, material); err != nil {
		return &CredentialWriteError{Path: r.paths.DeployKey, Err: err}
	}
	hostlog.Info("deploy key written", "path", r.paths.DeployKey)
	return nil
}

func (r *Runner) stepTransport(ctx context.Context) error {
	// The transport config is keyed on the repository host, so the URL is
	// resolved here, ahead of the clone.
	url := r.profile.RepoURL
	if r.profile.PromptRepoURL {
		supplied, err := r.deps.Creds.RepoURL(ctx)
		if err != nil {
			return fmt.Errorf("failed to capture repository URL: %w", err)
		}
		url = supplied
	}

	host, err := git.ValidateRemoteURL(url)
	if err != nil {
		return err
	}
	r.repoURL = url
	r.repoHost = host

	backup, err := sshconf.BackupConfig(r.paths.SSHConfig, r.session.Start)
	if err != nil {
		return &CredentialWriteError{Path: r.paths.SSHConfig, Err: err}
	}
	if backup != "" {
		hostlog.Info("existing ssh config backed up", "backup", backup)
	}

	hc := sshconf.HostConfig{
		Host:         host,
		IdentityFile: r.paths.DeployKey,
	}
	if err := sshconf.WriteHostConfig(r.paths.SSHConfig, hc); err != nil {
		return &CredentialWriteError{Path: r.paths.SSHConfig, Err: err}
	}
	hostlog.Info("transport configured", "host", host, "config", r.paths.SSHConfig)
	return nil
}

func (r *Runner) stepClone(ctx context.Context) error {
	// Re-run semantics: a populated destination fails fast here, before git
	// is invoked, rather than surfacing git's own non-empty-directory error.
	populated, err := destinationPopulated(r.paths.Destination)
	if err != nil {
		return err
	}
	if populated {
		return fmt.Errorf("destination %s is already populated; move it aside to re-run the bootstrap", r.paths.Destination)
	}

	hostlog.Info("cloning repository", "url", r.repoURL, "destination", r.paths.Destination)
	if err := r.deps.Git.Clone(ctx, r.repoURL, r.paths.Destination); err != nil {
		cloneErr := &CloneError{
			URL:     r.repoURL,
			Dest:    r.paths.Destination,
			KeyPath: r.paths.DeployKey,
			Host:    r.repoHost,
			Err:     err,
		}
		hostlog.Error("clone diagnostics", "hint", cloneErr.Diagnostics())
		return cloneErr
	}

	return applyPostClonePolicy(r.profile, r.paths)
}

// destinationPopulated reports whether the clone target exists and contains
// anything.
func destinationPopulated(dest string) (bool, error) {
	entries, err := os.ReadDir(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect destination %s: %w", dest, err)
	}
	return len(entries) > 0, nil
}
