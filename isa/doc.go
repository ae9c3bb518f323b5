// Package isa provides the Investigation/Study/Assay domain model that the
// export package serializes.
//
// The types are plain data holders. An Investigation owns its ontologies,
// publications, contacts and studies; an OntologyAnnotation only refers to an
// Ontology held by the Investigation and never manages its lifetime.
//
// MustOntologyAnnotation is meant for terms known when the program is written,
// such as fixtures and built-in vocabularies. Terms read from input go
// through NewOntologyAnnotation so an empty term is reported as ErrEmptyTerm.
package isa
