// Package testutil provides artefact fixtures and store construction
// helpers shared across test packages.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transport-data/tools/internal/config"
	"github.com/transport-data/tools/internal/git"
	"github.com/transport-data/tools/internal/sdmx"
	"github.com/transport-data/tools/internal/store"
	"github.com/transport-data/tools/internal/urn"
)

// Identity builds a validated identity or fails the test.
func Identity(t *testing.T, class, maintainer, id, version string) urn.Identity {
	t.Helper()
	ident, err := urn.New(class, maintainer, id, version)
	require.NoError(t, err)
	return ident
}

// ColourCodelist returns a small codelist of fruit colours.
func ColourCodelist(t *testing.T, maintainer, version string) *sdmx.Artefact {
	t.Helper()
	return &sdmx.Artefact{
		Identity: Identity(t, "Codelist", maintainer, "COLOUR", version),
		Name:     "Colour of fruit",
		Codes: []sdmx.Code{
			{ID: "GREEN", Name: "Green"},
			{ID: "ORANGE", Name: "Orange"},
			{ID: "RED", Name: "Red"},
			{ID: "YELLOW", Name: "Yellow"},
			{ID: "_T", Name: "Total"},
		},
	}
}

// FruitCodelist returns a small codelist of fruit types.
func FruitCodelist(t *testing.T, maintainer, version string) *sdmx.Artefact {
	t.Helper()
	return &sdmx.Artefact{
		Identity: Identity(t, "Codelist", maintainer, "FRUIT", version),
		Name:     "Type of fruit",
		Codes: []sdmx.Code{
			{ID: "APPLE", Name: "Apple"},
			{ID: "BANANA", Name: "Banana"},
			{ID: "GRAPE", Name: "Grape"},
			{ID: "LEMON", Name: "Lemon"},
			{ID: "_T", Name: "Total"},
		},
	}
}

// ConceptScheme returns a concept scheme describing the fruit datasets.
func ConceptScheme(t *testing.T, maintainer, version string) *sdmx.Artefact {
	t.Helper()
	return &sdmx.Artefact{
		Identity: Identity(t, "ConceptScheme", maintainer, "TEST", version),
		Concepts: []sdmx.Concept{
			{ID: "MASS", Name: "Mass of fruit"},
			{ID: "PICKED", Name: "Number of fruits picked"},
			{ID: "COLOUR", Name: "Colour of fruit"},
			{ID: "FRUIT", Name: "Type of fruit"},
		},
	}
}

// TempUnion builds a union store over temporary directories: a local
// backend, a registry backend whose root is an initialized (empty) git
// repository, and the given registry maintainer set. The decode cache
// is enabled with defaults.
func TempUnion(t *testing.T, registryMaintainers ...string) *store.Union {
	t.Helper()
	dataDir := t.TempDir()

	local := store.NewLocal(dataDir)
	registry := store.NewRegistry(dataDir, "https://example.org/registry.git")

	cfg := config.Defaults().Cache
	return store.NewUnionWithBackends(local, registry, registryMaintainers, cfg)
}

// InitGitRepo turns dir into an empty git repository with test identity
// configured, so staging and committing work in CI.
func InitGitRepo(t *testing.T, dir string) {
	t.Helper()
	e := git.NewRealExecutor(dir)
	require.NoError(t, e.Init())
}
