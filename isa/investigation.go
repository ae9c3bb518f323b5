package isa

import "time"

// Investigation is the root of an ISA document. It exclusively owns its
// ontologies, publications, contacts and studies.
type Investigation struct {
	Commentable

	Identifier        string
	Title             string
	Description       string
	SubmissionDate    *time.Time
	PublicReleaseDate *time.Time

	Ontologies   []*Ontology
	Publications []*Publication
	Contacts     []*Contact

	studies []*Study
}

// NewInvestigation creates an investigation with the given identifier.
func NewInvestigation(identifier string) *Investigation {
	return &Investigation{Identifier: identifier}
}

// AddOntology appends an ontology source reference.
func (inv *Investigation) AddOntology(o *Ontology) {
	inv.Ontologies = append(inv.Ontologies, o)
}

// Ontology finds an ontology source reference by name.
func (inv *Investigation) Ontology(name string) (*Ontology, bool) {
	for _, o := range inv.Ontologies {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// AddPublication appends a publication.
func (inv *Investigation) AddPublication(p *Publication) {
	inv.Publications = append(inv.Publications, p)
}

// AddContact appends a contact.
func (inv *Investigation) AddContact(c *Contact) {
	inv.Contacts = append(inv.Contacts, c)
}

// AddStudy appends a study. It reports false and leaves the investigation
// unchanged when another study already uses the same identifier or file name.
func (inv *Investigation) AddStudy(s *Study) bool {
	for _, existing := range inv.studies {
		if existing.Identifier == s.Identifier || existing.FileName == s.FileName {
			return false
		}
	}
	inv.studies = append(inv.studies, s)
	return true
}

// Studies returns the studies in insertion order.
func (inv *Investigation) Studies() []*Study {
	return inv.studies
}
