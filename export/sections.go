package export

import (
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/c360studio/isatab/isa"
)

// column pairs a line label with the function extracting one cell per item.
// A section is an ordered list of columns; the order is the line order of the
// published format.
type column[T any] struct {
	label string
	value func(T) string
}

func col[T any](k Key, value func(T) string) column[T] {
	return column[T]{label: k.Label(), value: value}
}

// annotationColumns expands an optional ontology annotation into the term
// line and its derived "Term Accession Number" and "Term Source REF" lines.
// Cells are empty when the annotation or its source is missing.
func annotationColumns[T any](k Key, annotation func(T) *isa.OntologyAnnotation) []column[T] {
	return []column[T]{
		col(k, func(item T) string { return annotation(item).Term() }),
		col(k.Merge(TermAccessionNumber), func(item T) string { return annotation(item).Accession() }),
		col(k.Merge(TermSourceREF), func(item T) string { return annotation(item).SourceName() }),
	}
}

func ontologyColumns() []column[*isa.Ontology] {
	return []column[*isa.Ontology]{
		col(TermSourceName, func(o *isa.Ontology) string { return o.Name }),
		col(TermSourceFile, func(o *isa.Ontology) string { return o.URL }),
		col(TermSourceVersion, func(o *isa.Ontology) string { return o.Version }),
		col(TermSourceDescription, func(o *isa.Ontology) string { return o.Description }),
	}
}

func publicationColumns(scope Scope) []column[*isa.Publication] {
	cols := []column[*isa.Publication]{
		col(scope.PubMedID(), func(p *isa.Publication) string { return p.PubMedID }),
		col(scope.PublicationDOI(), func(p *isa.Publication) string { return p.DOI }),
		col(scope.PublicationAuthorList(), func(p *isa.Publication) string { return authorList(p.Authors) }),
		col(scope.PublicationTitle(), func(p *isa.Publication) string { return p.Title }),
	}
	return append(cols, annotationColumns(scope.PublicationStatus(),
		func(p *isa.Publication) *isa.OntologyAnnotation { return p.Status })...)
}

func contactColumns(scope Scope) []column[*isa.Contact] {
	cols := []column[*isa.Contact]{
		col(scope.PersonLastName(), func(c *isa.Contact) string { return c.LastName }),
		col(scope.PersonFirstName(), func(c *isa.Contact) string { return c.FirstName }),
		col(scope.PersonMidInitials(), func(c *isa.Contact) string { return c.MidInitials }),
		col(scope.PersonEmail(), func(c *isa.Contact) string { return c.Email }),
		col(scope.PersonPhone(), func(c *isa.Contact) string { return c.Phone }),
		col(scope.PersonFax(), func(c *isa.Contact) string { return c.Fax }),
		col(scope.PersonAddress(), func(c *isa.Contact) string { return c.Address }),
		col(scope.PersonAffiliation(), func(c *isa.Contact) string { return c.Affiliation }),
	}
	return append(cols, annotationColumns(scope.PersonRoles(),
		func(c *isa.Contact) *isa.OntologyAnnotation { return c.Roles })...)
}

func designDescriptorColumns() []column[*isa.DesignDescriptor] {
	return annotationColumns(StudyDesignType,
		func(d *isa.DesignDescriptor) *isa.OntologyAnnotation { return d.Type })
}

// authorList renders authors as "Last, F" joined by "; ".
func authorList(authors []isa.Person) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		name := a.LastName
		if a.FirstName != "" {
			initial, _ := utf8.DecodeRuneInString(a.FirstName)
			name += ", " + string(initial)
		}
		names = append(names, name)
	}
	return strings.Join(names, semicolon+" ")
}

// sectionWriter writes sections to a sink. The first write error is kept and
// every later write becomes a no-op.
type sectionWriter struct {
	out        io.Writer
	dateLayout string
	lines      int
	err        error
}

func (s *sectionWriter) write(text string) {
	if s.err != nil || text == "" {
		return
	}
	if _, err := io.WriteString(s.out, text); err != nil {
		s.err = err
		return
	}
	s.lines += strings.Count(text, lineBreak)
}

func (s *sectionWriter) header(k Key) {
	s.write(headerLine(k))
}

func (s *sectionWriter) value(k Key, value string) {
	s.write(valueLine(k.Label(), value))
}

func (s *sectionWriter) date(k Key, t *time.Time) {
	var value string
	if t != nil {
		value = t.Format(s.dateLayout)
	}
	s.value(k, value)
}

func writeColumns[T any](s *sectionWriter, items []T, cols []column[T]) {
	for _, c := range cols {
		s.write(BuildLine(c.label, items, c.value))
	}
}

func (s *sectionWriter) ontologySources(ontologies []*isa.Ontology) {
	s.header(OntologySourceReference)
	writeColumns(s, ontologies, ontologyColumns())
}

func (s *sectionWriter) investigation(inv *isa.Investigation) {
	s.header(InvestigationSection)
	s.value(InvestigationIdentifier, inv.Identifier)
	s.value(InvestigationTitle, inv.Title)
	s.value(InvestigationDescription, inv.Description)
	s.date(InvestigationSubmissionDate, inv.SubmissionDate)
	s.date(InvestigationPublicReleaseDate, inv.PublicReleaseDate)
	s.write(DirectComments(inv.Comments()))
}

func (s *sectionWriter) publications(header Key, scope Scope, publications []*isa.Publication) {
	s.header(header)
	writeColumns(s, publications, publicationColumns(scope))
	s.write(AlignComments(commentBuckets(publications, (*isa.Publication).Comments)))
}

func (s *sectionWriter) contacts(header Key, scope Scope, contacts []*isa.Contact) {
	s.header(header)
	writeColumns(s, contacts, contactColumns(scope))
	s.write(AlignComments(commentBuckets(contacts, (*isa.Contact).Comments)))
}

func (s *sectionWriter) study(st *isa.Study) {
	s.header(StudySection)
	s.value(StudyIdentifier, st.Identifier)
	s.value(StudyFileName, st.FileName)
	s.value(StudyTitle, st.Title)
	s.value(StudyDescription, st.Description)
	s.date(StudySubmissionDate, st.SubmissionDate)
	s.date(StudyPublicReleaseDate, st.PublicReleaseDate)
	s.write(DirectComments(st.Comments()))

	s.header(StudyDesignDescriptors)
	writeColumns(s, st.DesignDescriptors, designDescriptorColumns())
	s.write(AlignComments(commentBuckets(st.DesignDescriptors, (*isa.DesignDescriptor).Comments)))

	s.publications(StudyPublications, ScopeStudy, st.Publications)
	s.contacts(StudyContacts, ScopeStudy, st.Contacts)
}
