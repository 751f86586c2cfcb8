package git

import (
	"context"
	"testing"
)

func TestValidateRemoteURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantErr  bool
	}{
		{"github ssh form", "git@github.com:org/repo.git", "github.com", false},
		{"private host", "deploy@git.internal.example:infra/config.git", "git.internal.example", false},
		{"surrounding whitespace", "  git@github.com:org/repo.git\n", "github.com", false},
		{"https form rejected", "https://github.com/org/repo.git", "", true},
		{"missing user", "github.com:org/repo.git", "", true},
		{"missing path", "git@github.com:", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, err := ValidateRemoteURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRemoteURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if host != tt.wantHost {
				t.Errorf("ValidateRemoteURL(%q) host = %q, want %q", tt.url, host, tt.wantHost)
			}
		})
	}
}

func TestLooksLikeEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"jane@example.com", true},
		{"jane.smith+ops@sub.example.co.uk", true},
		{"  jane@example.com  ", true},
		{"not-an-email", false},
		{"jane@localhost", false},
		{"@example.com", false},
		{"jane@", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := LooksLikeEmail(tt.email); got != tt.want {
			t.Errorf("LooksLikeEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestVersion(t *testing.T) {
	// Git is expected to be available in the test environment.
	c := NewCLI()
	version, err := c.Version(context.Background())
	if err != nil {
		t.Skipf("git not available: %v", err)
	}
	if version == "" {
		t.Error("Version() returned empty string")
	}
	t.Logf("git version: %s", version)
}
