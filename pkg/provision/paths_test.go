package provision

import "testing"

func TestDefaultPaths(t *testing.T) {
	p, err := LoadProfile("ansible")
	if err != nil {
		t.Fatal(err)
	}

	paths := DefaultPaths(p, "/root")
	if paths.SSHDir != "/root/.ssh" {
		t.Errorf("SSHDir = %q", paths.SSHDir)
	}
	if paths.DeployKey != "/root/.ssh/deploy_key" {
		t.Errorf("DeployKey = %q", paths.DeployKey)
	}
	if paths.SSHConfig != "/root/.ssh/config" {
		t.Errorf("SSHConfig = %q", paths.SSHConfig)
	}
	if paths.Destination != p.Destination {
		t.Errorf("Destination = %q, want profile destination %q", paths.Destination, p.Destination)
	}
	if paths.AnsibleLog != "/var/log/ansible.log" {
		t.Errorf("AnsibleLog = %q", paths.AnsibleLog)
	}
}
