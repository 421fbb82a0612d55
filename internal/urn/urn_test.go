package urn

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse_LongForm(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		class      string
		maintainer string
		id         string
		version    string // "" = unversioned
	}{
		{
			name:       "codelist with version",
			text:       "urn:sdmx:org.sdmx.infomodel.codelist.Codelist=TDCI:COLOUR(1.0.0)",
			class:      "Codelist",
			maintainer: "TDCI",
			id:         "COLOUR",
			version:    "1.0.0",
		},
		{
			name:       "data structure definition",
			text:       "urn:sdmx:org.sdmx.infomodel.datastructure.DataStructureDefinition=ISO:MASS(2.11.4)",
			class:      "DataStructureDefinition",
			maintainer: "ISO",
			id:         "MASS",
			version:    "2.11.4",
		},
		{
			name:       "agency scheme without version",
			text:       "urn:sdmx:org.sdmx.infomodel.base.AgencyScheme=TDCI:TDCI",
			class:      "AgencyScheme",
			maintainer: "TDCI",
			id:         "TDCI",
		},
		{
			name:       "None version parses as unversioned",
			text:       "urn:sdmx:org.sdmx.infomodel.conceptscheme.ConceptScheme=TEST:TEST(None)",
			class:      "ConceptScheme",
			maintainer: "TEST",
			id:         "TEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, err := Parse(tt.text)
			require.NoError(t, err)
			require.Equal(t, tt.class, ident.Class)
			require.Equal(t, tt.maintainer, ident.Maintainer)
			require.Equal(t, tt.id, ident.ID)
			if tt.version == "" {
				require.Nil(t, ident.Version, "expected unversioned identity")
			} else {
				require.NotNil(t, ident.Version)
				require.Equal(t, tt.version, ident.Version.String())
			}
		})
	}
}

func TestParse_ShortForm(t *testing.T) {
	ident, err := Parse("Codelist=TDCI:COLOUR(1.2.3)")
	require.NoError(t, err)
	require.Equal(t, "Codelist", ident.Class)
	require.Equal(t, "TDCI", ident.Maintainer)
	require.Equal(t, "COLOUR", ident.ID)
	require.Equal(t, "1.2.3", ident.Version.String())

	ident, err = Parse("DataflowDefinition=ACME:EMISSIONS")
	require.NoError(t, err)
	require.Equal(t, "DataflowDefinition", ident.Class)
	require.Nil(t, ident.Version)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"free text", "not a urn at all"},
		{"empty", ""},
		{"missing object id", "Codelist=TDCI"},
		{"unknown class", "Widget=TDCI:COLOUR(1.0.0)"},
		{"two-part version", "Codelist=TDCI:COLOUR(1.0)"},
		{"four-part version", "Codelist=TDCI:COLOUR(1.0.0.0)"},
		{"negative version", "Codelist=TDCI:COLOUR(1.-1.0)"},
		{"wrong infomodel package", "urn:sdmx:org.sdmx.infomodel.base.Codelist=TDCI:COLOUR(1.0.0)"},
		{"trailing junk", "Codelist=TDCI:COLOUR(1.0.0)x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.ErrorIs(t, err, ErrMalformedIdentity)
		})
	}
}

func TestIdentity_URNRoundTrip(t *testing.T) {
	urns := []string{
		"urn:sdmx:org.sdmx.infomodel.codelist.Codelist=TDCI:COLOUR(1.0.0)",
		"urn:sdmx:org.sdmx.infomodel.base.AgencyScheme=TDCI:TDCI(1.0.0)",
		"urn:sdmx:org.sdmx.infomodel.datastructure.DataflowDefinition=ISO:FUEL(10.2.0)",
		"urn:sdmx:org.sdmx.infomodel.conceptscheme.ConceptScheme=TEST:TEST(0.1.0)",
	}

	for _, u := range urns {
		ident, err := Parse(u)
		require.NoError(t, err)
		require.Equal(t, u, ident.URN(), "long form should round-trip")

		// Short form resolves back to the same object.
		reparsed, err := Parse(ident.String())
		require.NoError(t, err)
		require.True(t, ident.SameObject(reparsed))
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New("Codelist", "TDCI", "COLOUR", "1.0.0")
	require.NoError(t, err)

	_, err = New("Widget", "TDCI", "COLOUR", "1.0.0")
	require.ErrorIs(t, err, ErrMalformedIdentity)

	_, err = New("Codelist", "", "COLOUR", "")
	require.ErrorIs(t, err, ErrMalformedIdentity)

	_, err = New("Codelist", "TDCI", "COLOUR", "1.0")
	require.ErrorIs(t, err, ErrMalformedIdentity)
}

func TestVersion_Ordering(t *testing.T) {
	a, err := ParseVersion("1.2.0")
	require.NoError(t, err)
	b, err := ParseVersion("1.10.0")
	require.NoError(t, err)

	// Numeric, not lexicographic, comparison.
	require.True(t, a.LessThan(b))
}

// Property: any identity built from valid components formats to a long
// URN that parses back to an equal identity.
func TestProperty_ParseFormatInverse(t *testing.T) {
	classes := Classes()

	rapid.Check(t, func(rt *rapid.T) {
		class := rapid.SampledFrom(classes).Draw(rt, "class")
		maintainer := rapid.StringMatching(`[A-Z][A-Z0-9]{0,9}`).Draw(rt, "maintainer")
		id := rapid.StringMatching(`[A-Z0-9_][A-Z0-9_\-]{0,11}`).Draw(rt, "id")

		version := ""
		if rapid.Bool().Draw(rt, "versioned") {
			major := rapid.IntRange(0, 99).Draw(rt, "major")
			minor := rapid.IntRange(0, 99).Draw(rt, "minor")
			patch := rapid.IntRange(0, 99).Draw(rt, "patch")
			version = fmt.Sprintf("%d.%d.%d", major, minor, patch)
		}

		ident, err := New(class, maintainer, id, version)
		require.NoError(rt, err)

		long, err := Parse(ident.URN())
		require.NoError(rt, err)
		require.Equal(rt, ident, long)

		short, err := Parse(ident.String())
		require.NoError(rt, err)
		require.Equal(rt, ident, short)
	})
}

