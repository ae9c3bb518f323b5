package isa

import "time"

// Person is an entry of a publication author list.
type Person struct {
	FirstName string
	LastName  string
}

// Publication is a paper associated with an investigation or study.
type Publication struct {
	Commentable

	PubMedID string
	DOI      string
	Authors  []Person
	Title    string
	Status   *OntologyAnnotation
}

// Contact is a person associated with an investigation or study.
type Contact struct {
	Commentable

	LastName    string
	FirstName   string
	MidInitials string
	Email       string
	Phone       string
	Fax         string
	Address     string
	Affiliation string
	Roles       *OntologyAnnotation
}

// DesignDescriptor classifies a study design.
type DesignDescriptor struct {
	Commentable

	Type *OntologyAnnotation
}

// Study is a unit of research within an investigation.
type Study struct {
	Commentable

	Identifier        string
	FileName          string
	Title             string
	Description       string
	SubmissionDate    *time.Time
	PublicReleaseDate *time.Time

	DesignDescriptors []*DesignDescriptor
	Publications      []*Publication
	Contacts          []*Contact
}

// NewStudy creates a study with the given identifier and study file name.
func NewStudy(identifier, fileName string) *Study {
	return &Study{Identifier: identifier, FileName: fileName}
}

// AddDesignDescriptor appends a design descriptor.
func (s *Study) AddDesignDescriptor(d *DesignDescriptor) {
	s.DesignDescriptors = append(s.DesignDescriptors, d)
}

// AddPublication appends a study publication.
func (s *Study) AddPublication(p *Publication) {
	s.Publications = append(s.Publications, p)
}

// AddContact appends a study contact.
func (s *Study) AddContact(c *Contact) {
	s.Contacts = append(s.Contacts, c)
}
