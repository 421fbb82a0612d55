package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transport-data/tools/internal/store"
	"github.com/transport-data/tools/internal/testutil"
	"github.com/transport-data/tools/internal/urn"
)

func TestFlatFile_RoundTrip(t *testing.T) {
	s := store.NewFlatFile(t.TempDir())
	a := testutil.ColourCodelist(t, "TEST", "1.0.0")

	require.NoError(t, s.Write(a))

	got, err := s.Get(a.Identity)
	require.NoError(t, err)
	require.Equal(t, a.Identity, got.Identity)
	require.Equal(t, a.Name, got.Name)
	require.Equal(t, a.Codes, got.Codes)
}

func TestFlatFile_FileLayout(t *testing.T) {
	root := t.TempDir()
	s := store.NewFlatFile(root)

	require.NoError(t, s.Write(testutil.ColourCodelist(t, "TDCI", "1.0.0")))

	// One file per logical object at the documented path; other tools
	// depend on this layout.
	want := filepath.Join(root, "TDCI", "Codelist_TDCI_COLOUR.yaml")
	_, err := os.Stat(want)
	require.NoError(t, err, "expected packed file at %s", want)

	// A second version packs into the same file, not a sibling.
	require.NoError(t, s.Write(testutil.ColourCodelist(t, "TDCI", "1.1.0")))
	entries, err := os.ReadDir(filepath.Join(root, "TDCI"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFlatFile_VersionResolution(t *testing.T) {
	s := store.NewFlatFile(t.TempDir())

	for _, ver := range []string{"1.0.0", "1.2.0", "1.2.4"} {
		a := testutil.ColourCodelist(t, "TEST", ver)
		a.Description = "revision " + ver
		require.NoError(t, s.Write(a))
	}

	t.Run("no version resolves to latest", func(t *testing.T) {
		got, err := s.Get(testutil.Identity(t, "Codelist", "TEST", "COLOUR", ""))
		require.NoError(t, err)
		require.Equal(t, "1.2.4", got.Identity.Version.String())
		require.Equal(t, "revision 1.2.4", got.Description)
	})

	t.Run("explicit version unchanged by newer revisions", func(t *testing.T) {
		got, err := s.Get(testutil.Identity(t, "Codelist", "TEST", "COLOUR", "1.2.0"))
		require.NoError(t, err)
		require.Equal(t, "revision 1.2.0", got.Description)
	})

	t.Run("latest is semver order, not insertion order", func(t *testing.T) {
		a := testutil.ColourCodelist(t, "TEST", "1.2.1")
		a.Description = "revision 1.2.1"
		require.NoError(t, s.Write(a))

		got, err := s.Get(testutil.Identity(t, "Codelist", "TEST", "COLOUR", ""))
		require.NoError(t, err)
		require.Equal(t, "1.2.4", got.Identity.Version.String())
	})
}

func TestFlatFile_OverwriteSemantics(t *testing.T) {
	s := store.NewFlatFile(t.TempDir())

	v1 := testutil.ColourCodelist(t, "TEST", "1.0.0")
	v1.Description = "first"
	require.NoError(t, s.Write(v1))

	v2 := testutil.ColourCodelist(t, "TEST", "2.0.0")
	v2.Description = "sibling"
	require.NoError(t, s.Write(v2))

	// Overwrite v1 in place.
	v1b := testutil.ColourCodelist(t, "TEST", "1.0.0")
	v1b.Description = "replaced"
	require.NoError(t, s.Write(v1b))

	got, err := s.Get(v1.Identity)
	require.NoError(t, err)
	require.Equal(t, "replaced", got.Description)

	// The sibling version in the same file is untouched.
	sibling, err := s.Get(v2.Identity)
	require.NoError(t, err)
	require.Equal(t, "sibling", sibling.Description)
}

func TestFlatFile_Errors(t *testing.T) {
	s := store.NewFlatFile(t.TempDir())
	require.NoError(t, s.Write(testutil.ColourCodelist(t, "TEST", "1.0.0")))

	t.Run("unknown object", func(t *testing.T) {
		_, err := s.Get(testutil.Identity(t, "Codelist", "TEST", "NOPE", ""))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown version of known object", func(t *testing.T) {
		_, err := s.Get(testutil.Identity(t, "Codelist", "TEST", "COLOUR", "9.9.9"))
		require.ErrorIs(t, err, store.ErrVersionNotFound)
	})

	t.Run("write requires explicit version", func(t *testing.T) {
		a := testutil.ColourCodelist(t, "TEST", "1.0.0")
		a.Identity = a.Identity.Unversioned()
		require.ErrorIs(t, s.Write(a), urn.ErrMalformedIdentity)
	})

	t.Run("exists never errors", func(t *testing.T) {
		require.True(t, s.Exists(testutil.Identity(t, "Codelist", "TEST", "COLOUR", "")))
		require.False(t, s.Exists(testutil.Identity(t, "Codelist", "TEST", "NOPE", "")))
		require.False(t, s.Exists(testutil.Identity(t, "Codelist", "TEST", "COLOUR", "9.9.9")))
	})
}

func TestFlatFile_CorruptedFile(t *testing.T) {
	root := t.TempDir()
	s := store.NewFlatFile(root)
	id := testutil.Identity(t, "Codelist", "TEST", "COLOUR", "")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "TEST"), 0o755))
	path := filepath.Join(root, "TEST", "Codelist_TEST_COLOUR.yaml")

	t.Run("not yaml", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))
		_, err := s.Get(id)
		require.ErrorIs(t, err, store.ErrSerialization)
	})

	t.Run("bad version key", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("versions:\n  \"one\": {name: x}\n"), 0o644))
		_, err := s.Get(id)
		require.ErrorIs(t, err, store.ErrSerialization)
	})
}

func TestFlatFile_List(t *testing.T) {
	s := store.NewFlatFile(t.TempDir())

	require.NoError(t, s.Write(testutil.ColourCodelist(t, "TDCI", "1.0.0")))
	require.NoError(t, s.Write(testutil.ColourCodelist(t, "TDCI", "2.0.0"))) // same object, second version
	require.NoError(t, s.Write(testutil.FruitCodelist(t, "TDCI", "1.0.0")))
	require.NoError(t, s.Write(testutil.ConceptScheme(t, "ACME", "1.0.0")))

	t.Run("distinct objects, not versions", func(t *testing.T) {
		ids, err := s.List(store.Filter{})
		require.NoError(t, err)
		require.Len(t, ids, 3)

		var keys []string
		for _, id := range ids {
			require.Nil(t, id.Version, "listing yields unversioned identities")
			keys = append(keys, id.Key())
		}
		require.Equal(t, []string{
			"ConceptScheme=ACME:TEST",
			"Codelist=TDCI:COLOUR",
			"Codelist=TDCI:FRUIT",
		}, keys, "grouped by maintainer, then object id ascending")
	})

	t.Run("maintainer filter", func(t *testing.T) {
		ids, err := s.List(store.Filter{Maintainer: "ACME"})
		require.NoError(t, err)
		require.Len(t, ids, 1)
		require.Equal(t, "ConceptScheme=ACME:TEST", ids[0].Key())
	})

	t.Run("class filter", func(t *testing.T) {
		ids, err := s.List(store.Filter{Class: "Codelist"})
		require.NoError(t, err)
		require.Len(t, ids, 2)
	})

	t.Run("missing root lists empty", func(t *testing.T) {
		empty := store.NewFlatFile(filepath.Join(t.TempDir(), "never-created"))
		ids, err := empty.List(store.Filter{})
		require.NoError(t, err)
		require.Empty(t, ids)
	})
}

func TestFlatFile_ListVersions(t *testing.T) {
	s := store.NewFlatFile(t.TempDir())
	id := testutil.Identity(t, "Codelist", "TEST", "COLOUR", "")

	versions, err := s.ListVersions(id)
	require.NoError(t, err)
	require.Empty(t, versions)

	for _, ver := range []string{"1.10.0", "1.2.0", "1.0.0"} {
		require.NoError(t, s.Write(testutil.ColourCodelist(t, "TEST", ver)))
	}

	versions, err = s.ListVersions(id)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	require.Equal(t, "1.0.0", versions[0].String())
	require.Equal(t, "1.2.0", versions[1].String())
	require.Equal(t, "1.10.0", versions[2].String(), "numeric, not lexicographic order")
}

func TestFlatFile_AssignVersion(t *testing.T) {
	s := store.NewFlatFile(t.TempDir())

	t.Run("default for new object", func(t *testing.T) {
		a := testutil.ColourCodelist(t, "TEST", "1.0.0")
		a.Identity = a.Identity.Unversioned()
		require.NoError(t, s.AssignVersion(a, false, false, false))
		require.Equal(t, "0.0.0", a.Identity.Version.String())
	})

	t.Run("reuses latest without increment", func(t *testing.T) {
		require.NoError(t, s.Write(testutil.ColourCodelist(t, "TEST", "1.2.0")))

		a := testutil.ColourCodelist(t, "TEST", "1.0.0")
		a.Identity = a.Identity.Unversioned()
		require.NoError(t, s.AssignVersion(a, false, false, false))
		require.Equal(t, "1.2.0", a.Identity.Version.String())
	})

	t.Run("minor increment", func(t *testing.T) {
		a := testutil.ColourCodelist(t, "TEST", "1.0.0")
		a.Identity = a.Identity.Unversioned()
		require.NoError(t, s.AssignVersion(a, false, true, false))
		require.Equal(t, "1.3.0", a.Identity.Version.String())
	})
}
