// Package sdmx holds the in-memory model of maintainable artefacts.
//
// The store treats an artefact as an opaque object graph: it needs the
// identity to derive a storage location, and yaml tags to serialize the
// rest. Interpretation of codes, dimensions, and so on belongs to the
// conversion pipelines that produce and consume these objects.
package sdmx

import (
	"time"

	"github.com/transport-data/tools/internal/urn"
)

// Annotation attaches free-form metadata to an artefact.
type Annotation struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title,omitempty"`
	Type  string `yaml:"type,omitempty"`
	Text  string `yaml:"text,omitempty"`
}

// Code is one entry in a Codelist.
type Code struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Concept is one entry in a ConceptScheme.
type Concept struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Component is a dimension, attribute, or measure of a data structure
// definition. ConceptIdentity and Codelist reference other artefacts by
// URN text.
type Component struct {
	ID              string `yaml:"id"`
	ConceptIdentity string `yaml:"concept_identity,omitempty"`
	Codelist        string `yaml:"codelist,omitempty"`
}

// Contact is a point of contact for an agency.
type Contact struct {
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`
	URI   string `yaml:"uri,omitempty"`
}

// Artefact is one revision of a maintainable structural artefact. Which
// of the collection fields are populated depends on the identity's
// class; the store never inspects them.
type Artefact struct {
	Identity urn.Identity `yaml:"-"`

	Name        string       `yaml:"name,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Annotations []Annotation `yaml:"annotations,omitempty"`

	Codes      []Code      `yaml:"codes,omitempty"`
	Concepts   []Concept   `yaml:"concepts,omitempty"`
	Dimensions []Component `yaml:"dimensions,omitempty"`
	Attributes []Component `yaml:"attributes,omitempty"`
	Measures   []Component `yaml:"measures,omitempty"`
	Contacts   []Contact   `yaml:"contacts,omitempty"`

	// Structure is the URN of the data structure a DataflowDefinition
	// describes data for.
	Structure string `yaml:"structure,omitempty"`
}

// GeneratedAnnotationID marks annotations recording that an artefact was
// produced by this tool rather than retrieved from an upstream source.
const GeneratedAnnotationID = "tdc.generated"

// AnnotateGenerated stamps a with when it was generated. An existing
// generated annotation is replaced so repeated writes do not accumulate.
func AnnotateGenerated(a *Artefact, now time.Time) {
	anno := Annotation{
		ID:   GeneratedAnnotationID,
		Text: now.UTC().Format(time.RFC3339) + " by transport-data/tools",
	}
	for i := range a.Annotations {
		if a.Annotations[i].ID == GeneratedAnnotationID {
			a.Annotations[i] = anno
			return
		}
	}
	a.Annotations = append(a.Annotations, anno)
}
