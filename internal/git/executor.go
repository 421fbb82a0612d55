// Package git wraps the git binary for registry working-copy operations.
package git

import "context"

// Executor defines the interface for git operations on a registry
// working copy. This abstraction allows for easy testing with mock
// implementations.
type Executor interface {
	// Clone materializes the repository at remoteURL into the executor's
	// working directory. The directory must not exist or be empty.
	// Returns ErrCloneFailed when the remote is unreachable or the target
	// cannot be used.
	Clone(ctx context.Context, remoteURL string) error

	// Pull fast-forwards the working copy to the upstream state.
	// Returns ErrDivergedFromRemote when a fast-forward is not possible.
	Pull(ctx context.Context) error

	// Add stages paths (relative to the working directory) for commit.
	Add(paths ...string) error

	// IsRepo reports whether the working directory is a git repository.
	IsRepo() bool

	// HasUncommittedChanges reports whether the working copy has staged or
	// unstaged modifications.
	HasUncommittedChanges() (bool, error)

	// RemoteURL returns the URL for the named remote (e.g. "origin").
	// Returns empty string and nil error if the remote doesn't exist.
	RemoteURL(name string) (string, error)

	// Init creates an empty repository in the working directory. Used by
	// tests and first-time registry setup without a remote.
	Init() error
}
