// Package document loads investigations from YAML descriptions.
//
// Ontology annotations name their source by ontology name; the name is looked
// up among the investigation's ontologies, so every annotation refers to an
// ontology owned by the same investigation.
package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/c360studio/isatab/isa"
	"gopkg.in/yaml.v3"
)

// Document loading errors.
var (
	// ErrUnknownOntology is returned when an annotation names an ontology that
	// the investigation does not declare.
	ErrUnknownOntology = errors.New("unknown ontology source")

	// ErrInvalidDate is returned for dates that are neither YYYY-MM-DD nor RFC 3339.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNoIdentifier is returned for a document without an investigation
	// identifier, which also catches YAML files that are not investigations.
	ErrNoIdentifier = errors.New("document has no investigation identifier")
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Investigation is the YAML form of an investigation.
type Investigation struct {
	Identifier        string        `yaml:"identifier"`
	Title             string        `yaml:"title"`
	Description       string        `yaml:"description"`
	SubmissionDate    string        `yaml:"submission_date"`
	PublicReleaseDate string        `yaml:"public_release_date"`
	Ontologies        []Ontology    `yaml:"ontologies"`
	Publications      []Publication `yaml:"publications"`
	Contacts          []Contact     `yaml:"contacts"`
	Studies           []Study       `yaml:"studies"`
	Comments          []isa.Comment `yaml:"comments"`
}

// Ontology is the YAML form of an ontology source reference.
type Ontology struct {
	Name        string `yaml:"name"`
	File        string `yaml:"file"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// Annotation is the YAML form of an ontology annotation.
type Annotation struct {
	Term      string `yaml:"term"`
	Accession string `yaml:"accession"`
	Source    string `yaml:"source"`
}

// Author is the YAML form of a publication author.
type Author struct {
	First string `yaml:"first"`
	Last  string `yaml:"last"`
}

// Publication is the YAML form of a publication.
type Publication struct {
	PubMedID string        `yaml:"pubmed_id"`
	DOI      string        `yaml:"doi"`
	Authors  []Author      `yaml:"authors"`
	Title    string        `yaml:"title"`
	Status   *Annotation   `yaml:"status"`
	Comments []isa.Comment `yaml:"comments"`
}

// Contact is the YAML form of a contact.
type Contact struct {
	LastName    string        `yaml:"last_name"`
	FirstName   string        `yaml:"first_name"`
	MidInitials string        `yaml:"mid_initials"`
	Email       string        `yaml:"email"`
	Phone       string        `yaml:"phone"`
	Fax         string        `yaml:"fax"`
	Address     string        `yaml:"address"`
	Affiliation string        `yaml:"affiliation"`
	Roles       *Annotation   `yaml:"roles"`
	Comments    []isa.Comment `yaml:"comments"`
}

// DesignDescriptor is the YAML form of a study design descriptor.
type DesignDescriptor struct {
	Type     *Annotation   `yaml:"type"`
	Comments []isa.Comment `yaml:"comments"`
}

// Study is the YAML form of a study.
type Study struct {
	Identifier        string             `yaml:"identifier"`
	FileName          string             `yaml:"file_name"`
	Title             string             `yaml:"title"`
	Description       string             `yaml:"description"`
	SubmissionDate    string             `yaml:"submission_date"`
	PublicReleaseDate string             `yaml:"public_release_date"`
	DesignDescriptors []DesignDescriptor `yaml:"design_descriptors"`
	Publications      []Publication      `yaml:"publications"`
	Contacts          []Contact          `yaml:"contacts"`
	Comments          []isa.Comment      `yaml:"comments"`
}

// Load reads and builds the investigation described by the YAML file at path.
func Load(path string) (*isa.Investigation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	inv, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inv, nil
}

// Decode reads a YAML investigation from r and builds the domain model.
// Keys outside the document schema are rejected, as is a document without
// an identifier.
func Decode(r io.Reader) (*isa.Investigation, error) {
	var doc Investigation
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	inv, err := doc.Build()
	if err != nil {
		return nil, err
	}
	if inv.Identifier == "" {
		return nil, ErrNoIdentifier
	}
	return inv, nil
}

// Build converts the YAML form into an isa.Investigation.
func (d *Investigation) Build() (*isa.Investigation, error) {
	inv := isa.NewInvestigation(d.Identifier)
	inv.Title = d.Title
	inv.Description = d.Description

	var err error
	if inv.SubmissionDate, err = parseDate("submission_date", d.SubmissionDate); err != nil {
		return nil, err
	}
	if inv.PublicReleaseDate, err = parseDate("public_release_date", d.PublicReleaseDate); err != nil {
		return nil, err
	}
	addComments(&inv.Commentable, d.Comments)

	// Ontologies come first so annotations can refer to them.
	for _, o := range d.Ontologies {
		inv.AddOntology(&isa.Ontology{Name: o.Name, URL: o.File, Version: o.Version, Description: o.Description})
	}

	b := builder{inv: inv}
	for i, p := range d.Publications {
		pub, err := b.publication(p)
		if err != nil {
			return nil, fmt.Errorf("publications[%d]: %w", i, err)
		}
		inv.AddPublication(pub)
	}
	for i, c := range d.Contacts {
		contact, err := b.contact(c)
		if err != nil {
			return nil, fmt.Errorf("contacts[%d]: %w", i, err)
		}
		inv.AddContact(contact)
	}
	for i, s := range d.Studies {
		study, err := b.study(s)
		if err != nil {
			return nil, fmt.Errorf("studies[%d]: %w", i, err)
		}
		if !inv.AddStudy(study) {
			return nil, fmt.Errorf("studies[%d] %q (file %q): %w", i, s.Identifier, s.FileName, isa.ErrDuplicateStudy)
		}
	}
	return inv, nil
}

type builder struct {
	inv *isa.Investigation
}

func (b builder) annotation(a *Annotation) (*isa.OntologyAnnotation, error) {
	if a == nil {
		return nil, nil
	}
	var source *isa.Ontology
	if a.Source != "" {
		o, ok := b.inv.Ontology(a.Source)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOntology, a.Source)
		}
		source = o
	}
	return isa.NewOntologyAnnotation(a.Term, a.Accession, source)
}

func (b builder) publication(p Publication) (*isa.Publication, error) {
	status, err := b.annotation(p.Status)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	pub := &isa.Publication{PubMedID: p.PubMedID, DOI: p.DOI, Title: p.Title, Status: status}
	for _, a := range p.Authors {
		pub.Authors = append(pub.Authors, isa.Person{FirstName: a.First, LastName: a.Last})
	}
	addComments(&pub.Commentable, p.Comments)
	return pub, nil
}

func (b builder) contact(c Contact) (*isa.Contact, error) {
	roles, err := b.annotation(c.Roles)
	if err != nil {
		return nil, fmt.Errorf("roles: %w", err)
	}
	contact := &isa.Contact{
		LastName:    c.LastName,
		FirstName:   c.FirstName,
		MidInitials: c.MidInitials,
		Email:       c.Email,
		Phone:       c.Phone,
		Fax:         c.Fax,
		Address:     c.Address,
		Affiliation: c.Affiliation,
		Roles:       roles,
	}
	addComments(&contact.Commentable, c.Comments)
	return contact, nil
}

func (b builder) study(s Study) (*isa.Study, error) {
	study := isa.NewStudy(s.Identifier, s.FileName)
	study.Title = s.Title
	study.Description = s.Description

	var err error
	if study.SubmissionDate, err = parseDate("submission_date", s.SubmissionDate); err != nil {
		return nil, err
	}
	if study.PublicReleaseDate, err = parseDate("public_release_date", s.PublicReleaseDate); err != nil {
		return nil, err
	}
	addComments(&study.Commentable, s.Comments)

	for i, d := range s.DesignDescriptors {
		typ, err := b.annotation(d.Type)
		if err != nil {
			return nil, fmt.Errorf("design_descriptors[%d]: type: %w", i, err)
		}
		descriptor := &isa.DesignDescriptor{Type: typ}
		addComments(&descriptor.Commentable, d.Comments)
		study.AddDesignDescriptor(descriptor)
	}
	for i, p := range s.Publications {
		pub, err := b.publication(p)
		if err != nil {
			return nil, fmt.Errorf("publications[%d]: %w", i, err)
		}
		study.AddPublication(pub)
	}
	for i, c := range s.Contacts {
		contact, err := b.contact(c)
		if err != nil {
			return nil, fmt.Errorf("contacts[%d]: %w", i, err)
		}
		study.AddContact(contact)
	}
	return study, nil
}

func addComments(target *isa.Commentable, comments []isa.Comment) {
	for _, c := range comments {
		target.AddComment(c.Type, c.Content)
	}
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s: %w: %q", field, ErrInvalidDate, value)
}
