package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/transport-data/tools/internal/git"
	"github.com/transport-data/tools/internal/log"
	"github.com/transport-data/tools/internal/paths"
	"github.com/transport-data/tools/internal/sdmx"
)

// Compile-time check that Registry implements Store.
var _ Store = (*Registry)(nil)

// Registry is the shared backend: its root is a working copy of an
// externally maintained git repository holding durable, citable
// artefacts. Get/Write/List are purely local file-system operations;
// only Clone and Update touch the network, so registry staleness is an
// explicit, user-triggered concern.
type Registry struct {
	*FlatFile
	git       git.Executor
	remoteURL string
}

// NewRegistry creates the registry store under dataDir, using the real
// git binary against remoteURL.
func NewRegistry(dataDir, remoteURL string) *Registry {
	root := paths.RegistryDir(dataDir)
	return &Registry{
		FlatFile:  NewFlatFile(root),
		git:       git.NewRealExecutor(root),
		remoteURL: remoteURL,
	}
}

// NewRegistryWithExecutor is like NewRegistry with an injected executor,
// for tests.
func NewRegistryWithExecutor(root, remoteURL string, exec git.Executor) *Registry {
	return &Registry{
		FlatFile:  NewFlatFile(root),
		git:       exec,
		remoteURL: remoteURL,
	}
}

// Clone materializes the working copy from the configured remote. A
// root that is already a valid clone is left untouched; a non-empty
// root that is not a clone fails with ErrClone.
func (r *Registry) Clone(ctx context.Context) error {
	if r.git.IsRepo() {
		log.Debug(log.CatGit, "registry already cloned", "root", r.Root())
		return nil
	}

	if entries, err := os.ReadDir(r.Root()); err == nil && len(entries) > 0 {
		return fmt.Errorf("%w: %s is not empty and not a git working copy", ErrClone, r.Root())
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrClone, err)
	}

	// git refuses to create nested directories for the clone target.
	if err := os.MkdirAll(filepath.Dir(r.Root()), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrClone, err)
	}

	log.Info(log.CatGit, "cloning registry", "remote", r.remoteURL, "root", r.Root())
	if err := r.git.Clone(ctx, r.remoteURL); err != nil {
		return fmt.Errorf("%w: %w", ErrClone, err)
	}
	return nil
}

// Update fast-forwards the working copy to the latest upstream state.
// Local modifications that a pull would overwrite, and diverged local
// history, fail with ErrSyncConflict; nothing is ever discarded.
func (r *Registry) Update(ctx context.Context) error {
	if !r.git.IsRepo() {
		return fmt.Errorf("%w: %s is not a git working copy; run clone first", ErrClone, r.Root())
	}

	dirty, err := r.git.HasUncommittedChanges()
	if err != nil {
		return fmt.Errorf("checking registry state: %w", err)
	}
	if dirty {
		return fmt.Errorf("%w: %s has local modifications; commit or stash them before updating", ErrSyncConflict, r.Root())
	}

	log.Info(log.CatGit, "updating registry", "root", r.Root())
	if err := r.git.Pull(ctx); err != nil {
		if errors.Is(err, git.ErrDivergedFromRemote) {
			return fmt.Errorf("%w: %w", ErrSyncConflict, err)
		}
		return fmt.Errorf("updating registry: %w", err)
	}
	return nil
}

// Write stores a and stages the resulting file so `git status` in the
// working copy shows what still needs to be shared upstream. Staging is
// best-effort: a root that is not yet a clone (e.g. in tests) stores
// fine without it.
func (r *Registry) Write(a *sdmx.Artefact) error {
	if err := r.FlatFile.Write(a); err != nil {
		return err
	}

	if !r.git.IsRepo() {
		return nil
	}
	rel, err := filepath.Rel(r.Root(), r.PathFor(a.Identity))
	if err != nil {
		return nil
	}
	if err := r.git.Add(rel); err != nil {
		log.Warn(log.CatGit, "could not stage artefact", "path", rel, "error", err)
	}
	return nil
}

// RemoteURL returns the configured remote.
func (r *Registry) RemoteURL() string {
	return r.remoteURL
}
