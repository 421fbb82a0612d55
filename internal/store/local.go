package store

import "github.com/transport-data/tools/internal/paths"

// Local is the per-user cache backend. It holds ephemeral, downloaded,
// or intermediate artefacts and is safe to delete and rebuild; nothing
// citable lives here. Behaviour is exactly the flat-file contract.
type Local struct {
	*FlatFile
}

// NewLocal creates the local store under dataDir.
func NewLocal(dataDir string) *Local {
	return &Local{FlatFile: NewFlatFile(paths.LocalDir(dataDir))}
}
