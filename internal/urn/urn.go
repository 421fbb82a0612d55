// Package urn parses and formats SDMX artefact identities.
//
// An identity names one revision of a maintainable artefact by class,
// maintainer, object id, and an optional semantic version. The canonical
// long form is
//
//	urn:sdmx:org.sdmx.infomodel.codelist.Codelist=TDCI:COLOUR(1.0.0)
//
// and the short form drops the urn prefix:
//
//	Codelist=TDCI:COLOUR(1.0.0)
//
// An identity without a version means "resolve to the latest stored
// version" and is distinct from any concrete version.
package urn

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// ErrMalformedIdentity indicates URN text that cannot be parsed into an
// identity. It is always a caller bug, never a retryable condition.
var ErrMalformedIdentity = errors.New("malformed artefact identity")

// classPackage maps each known artefact class to its SDMX information
// model package, used to construct the long-form URN.
var classPackage = map[string]string{
	"Agency":                  "base",
	"AgencyScheme":            "base",
	"Codelist":                "codelist",
	"ConceptScheme":           "conceptscheme",
	"DataStructureDefinition": "datastructure",
	"DataflowDefinition":      "datastructure",
}

// Classes returns the set of known artefact class names.
func Classes() []string {
	out := make([]string, 0, len(classPackage))
	for c := range classPackage {
		out = append(out, c)
	}
	return out
}

// KnownClass reports whether name is a recognized artefact class.
func KnownClass(name string) bool {
	_, ok := classPackage[name]
	return ok
}

// Identity is the parsed form of an artefact URN. The zero value is not
// valid; construct via Parse or New.
type Identity struct {
	Class      string
	Maintainer string
	ID         string

	// Version is nil when the identity does not pin a version, in which
	// case reads resolve to the latest stored version.
	Version *semver.Version
}

// New constructs an identity with an explicit version. version may be
// empty to leave the identity unversioned.
func New(class, maintainer, id, version string) (Identity, error) {
	ident := Identity{Class: class, Maintainer: maintainer, ID: id}
	if !KnownClass(class) {
		return Identity{}, fmt.Errorf("%w: unknown class %q", ErrMalformedIdentity, class)
	}
	if maintainer == "" || id == "" {
		return Identity{}, fmt.Errorf("%w: empty maintainer or id", ErrMalformedIdentity)
	}
	if version != "" {
		v, err := ParseVersion(version)
		if err != nil {
			return Identity{}, err
		}
		ident.Version = v
	}
	return ident, nil
}

// identityRe matches both the long and the short URN form. The version
// group also admits "None", which the reference SDMX tooling emits for
// an unversioned identity expanded to long form.
var identityRe = regexp.MustCompile(
	`^(?:urn:sdmx:org\.sdmx\.infomodel\.(?P<package>[a-z]+)\.)?` +
		`(?P<class>[A-Za-z]+)=(?P<maintainer>[A-Za-z0-9_]+):(?P<id>[A-Za-z0-9_@$\-]+)` +
		`(?:\((?P<version>[0-9.]+|None)\))?$`)

// versionRe enforces exactly three dot-separated non-negative integers.
var versionRe = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)

// ParseVersion parses a three-component semantic version string.
// Prerelease tags, build metadata, and "v" prefixes are rejected.
func ParseVersion(s string) (*semver.Version, error) {
	if !versionRe.MatchString(s) {
		return nil, fmt.Errorf("%w: version %q is not major.minor.patch", ErrMalformedIdentity, s)
	}
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %v", ErrMalformedIdentity, s, err)
	}
	return v, nil
}

// Parse parses long- or short-form URN text into an Identity.
func Parse(text string) (Identity, error) {
	m := identityRe.FindStringSubmatch(text)
	if m == nil {
		return Identity{}, fmt.Errorf("%w: %q", ErrMalformedIdentity, text)
	}

	pkg := m[identityRe.SubexpIndex("package")]
	class := m[identityRe.SubexpIndex("class")]
	wantPkg, ok := classPackage[class]
	if !ok {
		return Identity{}, fmt.Errorf("%w: unknown class %q in %q", ErrMalformedIdentity, class, text)
	}
	// A long form must carry the class's own infomodel package.
	if pkg != "" && pkg != wantPkg {
		return Identity{}, fmt.Errorf("%w: class %s belongs to package %s, not %s", ErrMalformedIdentity, class, wantPkg, pkg)
	}

	ident := Identity{
		Class:      class,
		Maintainer: m[identityRe.SubexpIndex("maintainer")],
		ID:         m[identityRe.SubexpIndex("id")],
	}

	if ver := m[identityRe.SubexpIndex("version")]; ver != "" && ver != "None" {
		v, err := ParseVersion(ver)
		if err != nil {
			return Identity{}, err
		}
		ident.Version = v
	}

	return ident, nil
}

// String returns the short form, e.g. "Codelist=TDCI:COLOUR(1.0.0)".
// The version parenthetical is omitted when no version is pinned.
func (i Identity) String() string {
	if i.Version == nil {
		return fmt.Sprintf("%s=%s:%s", i.Class, i.Maintainer, i.ID)
	}
	return fmt.Sprintf("%s=%s:%s(%s)", i.Class, i.Maintainer, i.ID, i.Version)
}

// URN returns the canonical long form. For an unversioned identity the
// parenthetical is omitted; Parse accepts both that and "(None)".
func (i Identity) URN() string {
	return fmt.Sprintf("urn:sdmx:org.sdmx.infomodel.%s.%s", classPackage[i.Class], i.String())
}

// WithVersion returns a copy of the identity pinned to v.
func (i Identity) WithVersion(v *semver.Version) Identity {
	i.Version = v
	return i
}

// Unversioned returns a copy of the identity with no version pinned.
func (i Identity) Unversioned() Identity {
	i.Version = nil
	return i
}

// Key returns the (class, maintainer, id) tuple as a stable string,
// ignoring version. Useful as a map key when grouping revisions of the
// same logical object.
func (i Identity) Key() string {
	return fmt.Sprintf("%s=%s:%s", i.Class, i.Maintainer, i.ID)
}

// SameObject reports whether two identities name the same logical
// object, ignoring version.
func (i Identity) SameObject(o Identity) bool {
	return i.Class == o.Class && i.Maintainer == o.Maintainer && i.ID == o.ID
}
