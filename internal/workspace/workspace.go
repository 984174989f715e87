// Package workspace confines agent file I/O and shell execution to a
// single working directory.
package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Sandbox scopes relative paths and shell commands to a root directory.
// Resolve canonicalizes paths and rejects anything that escapes the
// root; shell commands are only constrained by their working directory.
type Sandbox struct {
	root string
	env  []string
}

// ShellResult is the outcome of one shell command. A nonzero exit code
// is a normal, inspectable result, not an error.
type ShellResult struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// New creates a Sandbox rooted at root. The env snapshot is passed
// verbatim to every shell invocation; nil means an empty environment,
// so callers that want ambient state must snapshot it explicitly.
func New(root string, env []string) *Sandbox {
	// A trailing separator would break the prefix check in Resolve.
	return &Sandbox{root: filepath.Clean(root), env: env}
}

// Root returns the sandbox root directory.
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve maps a model-supplied path to an absolute path inside the
// root. Leading separators are dropped, the path is canonicalized, and
// anything that still escapes the root is rejected.
func (s *Sandbox) Resolve(rel string) (string, error) {
	cleaned := strings.TrimLeft(rel, "/")
	resolved := filepath.Join(s.root, cleaned)
	if resolved != s.root && !strings.HasPrefix(resolved, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes workspace: %s", rel)
	}
	return resolved, nil
}

// Read returns the full contents of a file under the root.
func (s *Sandbox) Read(rel string) (string, error) {
	path, err := s.Resolve(rel)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(data), nil
}

// Write creates parent directories as needed and writes content,
// overwriting any existing file. Returns the number of bytes written.
func (s *Sandbox) Write(rel string, content string) (int, error) {
	path, err := s.Resolve(rel)
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", rel, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("write %s: %w", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", rel, err)
	}
	return len(content), nil
}

// Run executes a shell command with the root as working directory and
// the sandbox's environment snapshot. No timeout is applied beyond what
// the context carries; a hung command blocks the caller.
func (s *Sandbox) Run(ctx context.Context, command string) (*ShellResult, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Dir = s.root
	cmd.Env = s.env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("run %q: %w", command, err)
		}
	}

	return &ShellResult{
		Command:  command,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// Exists reports whether a relative path exists under the root.
func (s *Sandbox) Exists(rel string) bool {
	path, err := s.Resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Clone copies a template tree into a fresh run directory under the
// system temp dir and returns a Sandbox over it. The directory is never
// removed here; its lifetime belongs to the caller.
func Clone(template string, env []string) (*Sandbox, error) {
	dest := filepath.Join(os.TempDir(), "skillbench-"+uuid.NewString())
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("clone workspace: %w", err)
	}
	if template != "" {
		if err := os.CopyFS(dest, os.DirFS(template)); err != nil {
			return nil, fmt.Errorf("clone workspace from %s: %w", template, err)
		}
	}
	return New(dest, env), nil
}
