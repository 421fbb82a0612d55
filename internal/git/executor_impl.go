package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Git-specific errors surfaced from stderr parsing.
var (
	// ErrCloneFailed indicates the remote could not be cloned.
	ErrCloneFailed = errors.New("clone failed")

	// ErrDivergedFromRemote indicates a fast-forward pull was not possible.
	ErrDivergedFromRemote = errors.New("local history diverged from remote")

	// ErrNotGitRepo indicates the directory is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrAuthenticationFailed indicates the remote rejected credentials.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Compile-time check that RealExecutor implements Executor.
var _ Executor = (*RealExecutor)(nil)

// RealExecutor implements Executor by executing actual git commands with
// the working directory fixed to one registry working copy.
type RealExecutor struct {
	workDir string
}

// NewRealExecutor creates a RealExecutor rooted at workDir.
func NewRealExecutor(workDir string) *RealExecutor {
	return &RealExecutor{workDir: workDir}
}

// runGit executes a git command and returns an error if it fails.
func (e *RealExecutor) runGit(ctx context.Context, args ...string) error {
	_, err := e.runGitOutput(ctx, args...)
	return err
}

// runGitOutput executes a git command and returns stdout and any error.
func (e *RealExecutor) runGitOutput(ctx context.Context, args ...string) (string, error) {
	//nolint:gosec // G204: args come from controlled sources
	cmd := exec.CommandContext(ctx, "git", args...)
	if e.workDir != "" {
		cmd.Dir = e.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", parseGitError(stderrStr, err)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// parseGitError converts git stderr messages to specific error types.
func parseGitError(stderr string, originalErr error) error {
	stderrLower := strings.ToLower(stderr)

	// Not a git repository
	if strings.Contains(stderrLower, "not a git repository") {
		return fmt.Errorf("%w: %s", ErrNotGitRepo, stderr)
	}

	// Authentication: fatal: Authentication failed for '<url>'
	if strings.Contains(stderrLower, "authentication failed") ||
		strings.Contains(stderrLower, "permission denied") {
		return fmt.Errorf("%w: %s", ErrAuthenticationFailed, stderr)
	}

	// Unreachable remote or unusable clone target
	if strings.Contains(stderrLower, "could not resolve host") ||
		strings.Contains(stderrLower, "repository not found") ||
		strings.Contains(stderrLower, "does not exist") ||
		strings.Contains(stderrLower, "already exists and is not an empty directory") {
		return fmt.Errorf("%w: %s", ErrCloneFailed, stderr)
	}

	// Fast-forward refused: "fatal: Not possible to fast-forward, aborting."
	// or "fatal: refusing to merge unrelated histories"
	if strings.Contains(stderrLower, "not possible to fast-forward") ||
		strings.Contains(stderrLower, "unrelated histories") ||
		strings.Contains(stderrLower, "would be overwritten by merge") {
		return fmt.Errorf("%w: %s", ErrDivergedFromRemote, stderr)
	}

	return fmt.Errorf("git error: %s: %w", stderr, originalErr)
}

// Clone materializes remoteURL into the working directory. Unlike the
// other operations it cannot run inside workDir, which git creates
// itself; a pre-existing non-empty workDir makes git fail, which
// parseGitError maps to ErrCloneFailed.
func (e *RealExecutor) Clone(ctx context.Context, remoteURL string) error {
	//nolint:gosec // G204: remoteURL comes from configuration
	cmd := exec.CommandContext(ctx, "git", "clone", remoteURL, e.workDir)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return parseGitError(s, err)
		}
		return fmt.Errorf("git clone %s: %w", remoteURL, err)
	}
	return nil
}

// Pull fast-forwards the working copy. --ff-only guarantees local
// commits are never rewritten or merged over.
func (e *RealExecutor) Pull(ctx context.Context) error {
	return e.runGit(ctx, "pull", "--ff-only")
}

// Add stages paths relative to the working directory.
func (e *RealExecutor) Add(paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	return e.runGit(context.Background(), args...)
}

// IsRepo checks if the working directory is a git repository.
func (e *RealExecutor) IsRepo() bool {
	err := e.runGit(context.Background(), "rev-parse", "--git-dir")
	return err == nil
}

// HasUncommittedChanges checks for staged or unstaged modifications.
func (e *RealExecutor) HasUncommittedChanges() (bool, error) {
	output, err := e.runGitOutput(context.Background(), "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return output != "", nil
}

// RemoteURL returns the URL for the named remote.
func (e *RealExecutor) RemoteURL(name string) (string, error) {
	output, err := e.runGitOutput(context.Background(), "remote", "get-url", name)
	if err != nil {
		// "error: No such remote" is not an error for callers probing
		// whether a remote is configured.
		if strings.Contains(strings.ToLower(err.Error()), "no such remote") {
			return "", nil
		}
		return "", err
	}
	return output, nil
}

// Init creates an empty repository in the working directory.
func (e *RealExecutor) Init() error {
	return e.runGit(context.Background(), "init")
}
