package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "hostprep",
	Short: "hostprep bootstraps a freshly installed Ubuntu server.",
	Long: `hostprep bootstraps a freshly installed Ubuntu server: it refreshes and
upgrades system packages, installs prerequisites, captures a deploy key and
commit identity, configures SSH transport for the source-control host, and
clones a private repository into a fixed location. Every step is recorded to
a timestamped log file under /var/log/hostprep_setup/.

Run it with administrator privilege:

  sudo hostprep config    clone an operator-supplied configuration repository
  sudo hostprep ansible   install Ansible and clone the playbook repository`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
