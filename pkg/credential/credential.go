// Package credential abstracts the interactive input the provisioner needs:
// the operator's commit identity, the deploy key material, and (for
// profiles without a fixed repository) the clone URL. The core sequence
// depends only on the Source interface, so tests supply canned input.
package credential

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// EndOfKeyMarker terminates pasted key material.
const EndOfKeyMarker = "EOF"

// Source supplies operator input for a provisioning run.
type Source interface {
	// Identity returns the commit author name and email.
	Identity(ctx context.Context) (name, email string, err error)

	// PrivateKey returns pasted private key material. Input is multi-line
	// and ends at a line containing only EndOfKeyMarker.
	PrivateKey(ctx context.Context) (string, error)

	// RepoURL returns an operator-supplied repository URL.
	RepoURL(ctx context.Context) (string, error)
}

// Terminal reads operator input line by line from in, writing prompts to
// out. Prompts are suppressed when in is not a terminal, so piped input
// stays clean.
type Terminal struct {
	in      *bufio.Scanner
	out     io.Writer
	prompts bool
}

// NewTerminal returns a Source reading from in and prompting on out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	// Only an interactive terminal gets prompt text; piped or canned input
	// does not.
	prompts := false
	if f, ok := in.(*os.File); ok {
		prompts = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Terminal{
		in:      bufio.NewScanner(in),
		out:     out,
		prompts: prompts,
	}
}

func (t *Terminal) prompt(text string) {
	if t.prompts {
		fmt.Fprint(t.out, text)
	}
}

// readLine returns the next input line. Context cancellation is checked
// before the blocking read; an unanswered prompt still blocks, matching the
// tool's no-timeout contract.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", io.EOF
	}
	return t.in.Text(), nil
}

func (t *Terminal) Identity(ctx context.Context) (string, string, error) {
	t.prompt("Commit author name: ")
	name, err := t.readLine(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to read author name: %w", err)
	}

	t.prompt("Commit author email: ")
	email, err := t.readLine(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to read author email: %w", err)
	}

	return strings.TrimSpace(name), strings.TrimSpace(email), nil
}

func (t *Terminal) PrivateKey(ctx context.Context) (string, error) {
	t.prompt(fmt.Sprintf("Paste the deploy key, then a line containing only %q:\n", EndOfKeyMarker))

	var lines []string
	for {
		line, err := t.readLine(ctx)
		if err == io.EOF {
			return "", fmt.Errorf("input ended before the %q marker", EndOfKeyMarker)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read key material: %w", err)
		}
		if strings.TrimSpace(line) == EndOfKeyMarker {
			break
		}
		lines = append(lines, line)
	}

	material := strings.Join(lines, "\n")
	if strings.TrimSpace(material) == "" {
		return "", fmt.Errorf("no key material supplied before the %q marker", EndOfKeyMarker)
	}
	return material, nil
}

func (t *Terminal) RepoURL(ctx context.Context) (string, error) {
	t.prompt("Repository URL (user@host:path form): ")
	url, err := t.readLine(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read repository URL: %w", err)
	}
	return strings.TrimSpace(url), nil
}

// Static is a canned Source for tests and non-interactive callers.
type Static struct {
	Name  string
	Email string
	Key   string
	URL   string
}

func (s *Static) Identity(ctx context.Context) (string, string, error) {
	return s.Name, s.Email, nil
}

func (s *Static) PrivateKey(ctx context.Context) (string, error) {
	return s.Key, nil
}

func (s *Static) RepoURL(ctx context.Context) (string, error) {
	return s.URL, nil
}
