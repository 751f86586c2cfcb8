package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hostprep/hostprep/pkg/apt"
	"github.com/hostprep/hostprep/pkg/credential"
	"github.com/hostprep/hostprep/pkg/git"
	hostlog "github.com/hostprep/hostprep/pkg/log"
	"github.com/hostprep/hostprep/pkg/preflight"
	"github.com/hostprep/hostprep/pkg/provision"
	"github.com/hostprep/hostprep/pkg/sysinfo"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Bootstrap the host and clone a configuration repository",
	Long: `Bootstrap the host and clone a private configuration repository.

The repository URL is supplied interactively in user@host:path form. The
clone lands in /opt/config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runBootstrap("config"); err != nil {
			fatal(err)
		}
		return nil
	},
}

var ansibleCmd = &cobra.Command{
	Use:   "ansible",
	Short: "Bootstrap the host, install Ansible, and clone the playbook repository",
	Long: `Bootstrap the host, install Ansible from its dedicated package source,
and clone the playbook repository into /opt/ansible. The destination is
tightened to group-readable, installer scripts are marked executable, and
playbook files are restricted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runBootstrap("ansible"); err != nil {
			fatal(err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(ansibleCmd)
}

// runBootstrap drives one provisioning run end to end, returning the fatal
// error if any step fails. On success it prints the completion summary.
func runBootstrap(profileName string) error {
	profile, err := provision.LoadProfile(profileName)
	if err != nil {
		return err
	}

	session := sysinfo.Capture()

	// The privilege guard comes before anything that writes to disk,
	// including the run-log directory.
	if !session.Elevated() {
		return &provision.PermissionError{EUID: session.EUID}
	}

	logPath, err := hostlog.NewRunLogPath(provision.DefaultLogDir, profile.Name, session.Start)
	if err != nil {
		return err
	}
	if err := hostlog.Init(hostlog.Config{Level: hostlog.LogLevel(logLevel), FilePath: logPath}); err != nil {
		return err
	}
	defer hostlog.Sync()

	hostlog.Info("bootstrap starting", "profile", profile.Name, "log", logPath)

	ctx := context.Background()
	if err := preflight.Run(ctx, newDiskCheck(profile)); err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "/root"
	}
	paths := provision.DefaultPaths(profile, home)

	runner := provision.New(profile, paths, session, provision.Deps{
		Pkg:   apt.NewSystem(),
		Git:   git.NewCLI(),
		Creds: credential.NewTerminal(os.Stdin, os.Stdout),
	})

	if err := runner.Run(ctx); err != nil {
		return err
	}

	printSummary(runner.Summary(), logPath)
	return nil
}

// newDiskCheck probes the filesystem the clone will land on, not the
// temp directory.
func newDiskCheck(p provision.Profile) *preflight.DiskSpaceCheck {
	return &preflight.DiskSpaceCheck{Path: filepath.Dir(p.Destination)}
}

// fatal prints a fatal-error paragraph (with clone diagnostics when
// applicable) and exits 1. The run log, when initialized, already carries
// the ERROR record via the logger.
func fatal(err error) {
	hostlog.Error("bootstrap failed", "error", err)
	_ = hostlog.Sync()
	color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "bootstrap failed")
	var cloneErr *provision.CloneError
	if errors.As(err, &cloneErr) {
		fmt.Fprintln(os.Stderr, cloneErr.Diagnostics())
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func printSummary(s provision.Summary, logPath string) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	green.Println("bootstrap complete")
	fmt.Println()
	bold.Println("Where things are:")
	fmt.Printf("  repository: %s\n", s.Destination)
	fmt.Printf("  cloned from: %s\n", s.RepoURL)
	fmt.Printf("  run log: %s\n", logPath)
	fmt.Println()
	bold.Println("Next steps:")
	fmt.Printf("  - review the cloned content under %s\n", s.Destination)
	fmt.Printf("  - delete the deploy key once it is no longer needed: rm %s\n", s.DeployKey)
}
