package isa

import "fmt"

// Ontology is a controlled-vocabulary source referenced by annotations.
type Ontology struct {
	Name        string
	URL         string
	Version     string
	Description string
}

// OntologyAnnotation is a term with an optional accession number and an
// optional reference to the Ontology it comes from.
type OntologyAnnotation struct {
	term      string
	accession string
	source    *Ontology
}

// NewOntologyAnnotation creates an annotation. The term must not be empty;
// accession and source are optional.
func NewOntologyAnnotation(term, accession string, source *Ontology) (*OntologyAnnotation, error) {
	if term == "" {
		return nil, ErrEmptyTerm
	}
	return &OntologyAnnotation{term: term, accession: accession, source: source}, nil
}

// MustOntologyAnnotation is like NewOntologyAnnotation but panics on an empty term.
func MustOntologyAnnotation(term, accession string, source *Ontology) *OntologyAnnotation {
	a, err := NewOntologyAnnotation(term, accession, source)
	if err != nil {
		panic(fmt.Sprintf("isa: %v", err))
	}
	return a
}

// Term returns the annotation term, or "" for a nil annotation.
func (a *OntologyAnnotation) Term() string {
	if a == nil {
		return ""
	}
	return a.term
}

// SetTerm replaces the term. An empty term is rejected and the annotation is
// left unchanged.
func (a *OntologyAnnotation) SetTerm(term string) error {
	if term == "" {
		return ErrEmptyTerm
	}
	a.term = term
	return nil
}

// Accession returns the term accession number, or "" when absent.
func (a *OntologyAnnotation) Accession() string {
	if a == nil {
		return ""
	}
	return a.accession
}

// SetAccession sets the term accession number.
func (a *OntologyAnnotation) SetAccession(accession string) {
	a.accession = accession
}

// Source returns the referenced ontology, which may be nil.
func (a *OntologyAnnotation) Source() *Ontology {
	if a == nil {
		return nil
	}
	return a.source
}

// SetSource sets the referenced ontology.
func (a *OntologyAnnotation) SetSource(source *Ontology) {
	a.source = source
}

// SourceName returns the name of the referenced ontology, or "" when the
// annotation or its source is absent.
func (a *OntologyAnnotation) SourceName() string {
	if src := a.Source(); src != nil {
		return src.Name
	}
	return ""
}
