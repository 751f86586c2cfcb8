// Package provision implements the bootstrap sequence: a fixed, ordered list
// of fail-fast steps driven by a small runner, parameterized by a profile so
// the plain configuration clone and the Ansible tooling variant share one
// implementation.
package provision

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

// Profile parameterizes a provisioning run.
type Profile struct {
	// Name identifies the variant and prefixes the run-log file name.
	Name string `yaml:"name"`

	// Packages is the fixed dependency list installed by the install step.
	Packages []string `yaml:"packages"`

	// AptRepository, when set, is a third-party package source registered
	// before the install (e.g. "ppa:ansible/ansible").
	AptRepository string `yaml:"apt_repository"`

	// RepoURL is the fixed clone URL. Empty when PromptRepoURL is set.
	RepoURL string `yaml:"repo_url"`

	// PromptRepoURL makes the clone step ask the operator for the URL.
	PromptRepoURL bool `yaml:"prompt_repo_url"`

	// Destination is the clone target directory.
	Destination string `yaml:"destination"`

	// GroupReadable tightens the destination to group-readable (not
	// world-readable) after the clone.
	GroupReadable bool `yaml:"group_readable"`

	// ExecutableDirs are destination subdirectories whose shell scripts are
	// marked executable after the clone. Missing directories are ignored.
	ExecutableDirs []string `yaml:"executable_dirs"`

	// RestrictPlaybooks restricts YAML playbook files under the destination
	// after the clone.
	RestrictPlaybooks bool `yaml:"restrict_playbooks"`

	// AnsibleLog, when set, is a log file prepared for the configuration
	// management engine itself.
	AnsibleLog string `yaml:"ansible_log"`

	// RequiredTools must resolve on PATH after the install step.
	RequiredTools []string `yaml:"required_tools"`
}

// Validate checks a profile for internal consistency.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile has no name")
	}
	if p.Destination == "" {
		return fmt.Errorf("profile %s has no destination", p.Name)
	}
	if p.RepoURL == "" && !p.PromptRepoURL {
		return fmt.Errorf("profile %s has neither a fixed repo URL nor prompt_repo_url", p.Name)
	}
	if p.RepoURL != "" && p.PromptRepoURL {
		return fmt.Errorf("profile %s has both a fixed repo URL and prompt_repo_url", p.Name)
	}
	if len(p.Packages) == 0 {
		return fmt.Errorf("profile %s installs no packages", p.Name)
	}
	return nil
}

type profileFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadProfile returns the built-in profile with the given name.
func LoadProfile(name string) (Profile, error) {
	var file profileFile
	if err := yaml.Unmarshal(profilesYAML, &file); err != nil {
		return Profile{}, fmt.Errorf("failed to parse built-in profiles: %w", err)
	}

	p, ok := file.Profiles[name]
	if !ok {
		names := make([]string, 0, len(file.Profiles))
		for n := range file.Profiles {
			names = append(names, n)
		}
		sort.Strings(names)
		return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(names, ", "))
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
