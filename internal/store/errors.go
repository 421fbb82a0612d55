package store

import "errors"

// Error taxonomy of the artefact store. All are sentinel errors wrapped
// with context at the point of failure; callers branch with errors.Is.
var (
	// ErrNotFound indicates no object with the requested (class,
	// maintainer, id) is known to the backend. An expected, recoverable
	// condition: callers commonly fall back to creating the artefact.
	ErrNotFound = errors.New("artefact not found")

	// ErrVersionNotFound indicates the object exists but not at the
	// requested version.
	ErrVersionNotFound = errors.New("artefact version not found")

	// ErrClone indicates the registry working copy could not be
	// materialized: unreachable remote, or a non-empty target that is not
	// already a valid clone. Never auto-retried.
	ErrClone = errors.New("registry clone failed")

	// ErrSyncConflict indicates an update would overwrite local
	// modifications, or local history diverged from the remote. Reported,
	// never silently discarded, never auto-retried.
	ErrSyncConflict = errors.New("registry sync conflict")

	// ErrSerialization indicates a stored file cannot be decoded into the
	// expected document structure. Treated as a corrupted-store
	// condition: surfaced immediately, never repaired automatically.
	ErrSerialization = errors.New("cannot decode stored artefact file")
)
