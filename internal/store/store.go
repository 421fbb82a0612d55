// Package store persists maintainable artefacts as packed, versioned
// YAML files and routes operations between a per-user local cache and a
// shared, git-backed registry.
//
// The unit of persistence is one file per (class, maintainer, id):
//
//	<root>/<MAINT>/<Class>_<MAINT>_<ID>.yaml
//
// with every stored version of the object packed inside. Other tools
// depend on this layout; it is a contract, not an implementation detail.
package store

import (
	"github.com/transport-data/tools/internal/sdmx"
	"github.com/transport-data/tools/internal/urn"
)

// Filter narrows a List call. Zero-value fields match everything.
type Filter struct {
	Maintainer string
	Class      string
}

// Store is the contract every backend implements. The union store holds
// two Store values and dispatches between them, so backend kinds can be
// added without touching dispatch logic.
type Store interface {
	// Get returns the artefact for id, resolving an explicit version or
	// the latest stored version when id is unversioned. Returns
	// ErrNotFound when the object id is unknown to this backend and
	// ErrVersionNotFound when the object exists but not at the requested
	// version.
	Get(id urn.Identity) (*sdmx.Artefact, error)

	// Exists reports whether Get would succeed. It never returns an
	// error; any resolution failure is false.
	Exists(id urn.Identity) bool

	// Write serializes a under a.Identity, which must carry an explicit
	// version. A revision with the identical (class, maintainer, id,
	// version) tuple is replaced in place; other versions packed in the
	// same file are preserved. Backend directories are created on first
	// write.
	//
	// The read-modify-write of the packed file takes no cross-process
	// lock: concurrent writers from separate processes can lose one
	// write. Single-operator use is the supported mode.
	Write(a *sdmx.Artefact) error

	// List enumerates the distinct (class, maintainer, id) tuples known
	// to the backend as unversioned identities, optionally filtered.
	// Results are grouped by maintainer, then object id ascending.
	List(f Filter) ([]urn.Identity, error)
}
