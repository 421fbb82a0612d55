package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/transport-data/tools/internal/log"
	"github.com/transport-data/tools/internal/sdmx"
	"github.com/transport-data/tools/internal/urn"
)

// FileExt is the extension of packed artefact files.
const FileExt = ".yaml"

// Compile-time check that FlatFile implements Store.
var _ Store = (*FlatFile)(nil)

// FlatFile is the per-backend storage engine: a directory tree of
// packed artefact files. Local and Registry both embed it.
type FlatFile struct {
	root string
}

// NewFlatFile creates an engine rooted at root. The root need not exist
// yet; it is created on first write.
func NewFlatFile(root string) *FlatFile {
	return &FlatFile{root: root}
}

// Root returns the backend root directory.
func (s *FlatFile) Root() string {
	return s.root
}

// PathFor derives the storage file for an identity, ignoring version:
// all versions of one logical object pack into one file.
func (s *FlatFile) PathFor(id urn.Identity) string {
	return filepath.Join(s.root, id.Maintainer,
		fmt.Sprintf("%s_%s_%s%s", id.Class, id.Maintainer, id.ID, FileExt))
}

// objectFile is the on-disk document: every stored version of one
// logical object, keyed by version string.
type objectFile struct {
	Versions map[string]*sdmx.Artefact `yaml:"versions"`
}

// readVersions decodes the packed file for id. Returns ErrNotFound when
// the file does not exist and ErrSerialization when it cannot be
// decoded or holds an unparseable version key.
func (s *FlatFile) readVersions(id urn.Identity) (map[string]*sdmx.Artefact, error) {
	path := s.PathFor(id)
	data, err := os.ReadFile(path) //nolint:gosec // G304: path derived from validated identity
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id.Key())
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f objectFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSerialization, path, err)
	}
	for ver, a := range f.Versions {
		if a == nil {
			return nil, fmt.Errorf("%w: %s: empty entry for version %q", ErrSerialization, path, ver)
		}
		if _, err := urn.ParseVersion(ver); err != nil {
			return nil, fmt.Errorf("%w: %s: bad version key %q", ErrSerialization, path, ver)
		}
	}
	return f.Versions, nil
}

// Get implements Store.
func (s *FlatFile) Get(id urn.Identity) (*sdmx.Artefact, error) {
	versions, err := s.readVersions(id)
	if err != nil {
		return nil, err
	}

	want := id.Version
	if want == nil {
		// Latest by semver order, never by file order.
		want = latestOf(versions)
		if want == nil {
			return nil, fmt.Errorf("%w: %s has no stored versions", ErrNotFound, id.Key())
		}
	}

	a, ok := versions[want.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s(%s)", ErrVersionNotFound, id.Key(), want)
	}

	a.Identity = id.WithVersion(want)
	log.Debug(log.CatStore, "get", "urn", a.Identity.String(), "root", s.root)
	return a, nil
}

// latestOf returns the greatest version key, or nil for an empty map.
// Keys are pre-validated by readVersions.
func latestOf(versions map[string]*sdmx.Artefact) *semver.Version {
	coll := make(semver.Collection, 0, len(versions))
	for ver := range versions {
		v, err := urn.ParseVersion(ver)
		if err != nil {
			continue
		}
		coll = append(coll, v)
	}
	if len(coll) == 0 {
		return nil
	}
	sort.Sort(coll)
	return coll[len(coll)-1]
}

// Exists implements Store.
func (s *FlatFile) Exists(id urn.Identity) bool {
	_, err := s.Get(id)
	return err == nil
}

// Write implements Store. The packed file is re-encoded as a whole and
// swapped in with a rename, so a concurrent reader never observes a
// partially written file.
func (s *FlatFile) Write(a *sdmx.Artefact) error {
	id := a.Identity
	if id.Version == nil {
		return fmt.Errorf("%w: cannot write %s without an explicit version", urn.ErrMalformedIdentity, id.Key())
	}
	if _, err := urn.New(id.Class, id.Maintainer, id.ID, id.Version.String()); err != nil {
		return err
	}

	versions, err := s.readVersions(id)
	switch {
	case errors.Is(err, ErrNotFound):
		versions = make(map[string]*sdmx.Artefact)
	case err != nil:
		return err
	}

	ver := id.Version.String()
	if _, exists := versions[ver]; exists {
		log.Warn(log.CatStore, "overwriting stored revision", "urn", id.String())
	}
	versions[ver] = a

	data, err := yaml.Marshal(objectFile{Versions: versions})
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrSerialization, id.String(), err)
	}

	path := s.PathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := atomicWrite(path, data); err != nil {
		return err
	}

	log.Info(log.CatStore, "write", "urn", id.String(), "path", path)
	return nil
}

// atomicWrite writes data to a dot-prefixed temp file in the target
// directory, then renames it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// List implements Store. It enumerates by file name only; no file is
// opened.
func (s *FlatFile) List(f Filter) ([]urn.Identity, error) {
	if _, err := os.Stat(s.root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	maint := "*"
	if f.Maintainer != "" {
		maint = f.Maintainer
	}
	class := "*"
	if f.Class != "" {
		class = f.Class
	}
	pattern := fmt.Sprintf("%s/%s_%s_*%s", maint, class, maint, FileExt)

	matches, err := doublestar.Glob(os.DirFS(s.root), pattern)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.root, err)
	}

	var out []urn.Identity
	for _, m := range matches {
		id, ok := identityFromPath(m)
		if !ok {
			continue
		}
		out = append(out, id)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Maintainer != out[j].Maintainer {
			return out[i].Maintainer < out[j].Maintainer
		}
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Class < out[j].Class
	})
	return out, nil
}

// identityFromPath recovers an unversioned identity from a relative
// storage path <MAINT>/<Class>_<MAINT>_<ID>.yaml. Files not matching
// the convention (or naming an unknown class) are skipped.
func identityFromPath(rel string) (urn.Identity, bool) {
	dir, base := filepath.Split(rel)
	maintainer := filepath.Clean(dir)
	name := strings.TrimSuffix(base, FileExt)

	// Class names contain no underscore; object ids may.
	class, rest, ok := strings.Cut(name, "_")
	if !ok || !urn.KnownClass(class) {
		return urn.Identity{}, false
	}
	id, found := strings.CutPrefix(rest, maintainer+"_")
	if !found || id == "" {
		return urn.Identity{}, false
	}

	ident, err := urn.New(class, maintainer, id, "")
	if err != nil {
		return urn.Identity{}, false
	}
	return ident, true
}

// ListVersions returns the versions stored for id in ascending order.
// An unknown object yields an empty slice, not an error.
func (s *FlatFile) ListVersions(id urn.Identity) ([]*semver.Version, error) {
	versions, err := s.readVersions(id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	coll := make(semver.Collection, 0, len(versions))
	for ver := range versions {
		v, err := urn.ParseVersion(ver)
		if err != nil {
			return nil, err
		}
		coll = append(coll, v)
	}
	sort.Sort(coll)
	return coll, nil
}

// NextVersion returns the latest stored version of id incremented in the
// requested positions, or defaultVersion when nothing is stored yet.
func (s *FlatFile) NextVersion(id urn.Identity, major, minor, patch bool) (*semver.Version, error) {
	stored, err := s.ListVersions(id)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return urn.ParseVersion(defaultVersion)
	}

	latest := stored[len(stored)-1]
	next := *latest
	if major {
		next = next.IncMajor()
	}
	if minor {
		next = next.IncMinor()
	}
	if patch {
		next = next.IncPatch()
	}
	return &next, nil
}

// defaultVersion is assigned to an object with no stored versions.
const defaultVersion = "0.0.0"

// AssignVersion pins a version on a prior to Write. With increment
// false the latest stored version (or 0.0.0) is reused, overwriting that
// revision; otherwise the indicated position is bumped.
func (s *FlatFile) AssignVersion(a *sdmx.Artefact, incrementMajor, incrementMinor, incrementPatch bool) error {
	id := a.Identity.Unversioned()

	if !incrementMajor && !incrementMinor && !incrementPatch {
		stored, err := s.ListVersions(id)
		if err != nil {
			return err
		}
		if len(stored) == 0 {
			v, err := urn.ParseVersion(defaultVersion)
			if err != nil {
				return err
			}
			a.Identity = id.WithVersion(v)
			return nil
		}
		a.Identity = id.WithVersion(stored[len(stored)-1])
		return nil
	}

	next, err := s.NextVersion(id, incrementMajor, incrementMinor, incrementPatch)
	if err != nil {
		return err
	}
	a.Identity = id.WithVersion(next)
	return nil
}
