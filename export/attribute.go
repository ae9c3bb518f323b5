package export

// placeholder marks the substitution point of a templated key in its
// canonical form.
const placeholder = "?"

// Key is an attribute label of the ISA-Tab vocabulary. A key is either a
// literal ("Study Identifier") or a template with one bracketed substitution
// point ("Comment[?]").
type Key struct {
	head      string
	tail      string
	templated bool
}

// Literal creates a key whose label is used as is.
func Literal(label string) Key {
	return Key{head: label}
}

// Template creates a key of the form "<name>[<sub>]".
func Template(name string) Key {
	return Key{head: name + "[", tail: "]", templated: true}
}

// String returns the canonical form of the key.
func (k Key) String() string {
	if k.templated {
		return k.head + placeholder + k.tail
	}
	return k.head
}

// Templated reports whether the key needs a substitution before use.
func (k Key) Templated() bool {
	return k.templated
}

// Resolve returns the display label. For templates sub fills the bracketed
// placeholder; literal keys ignore it.
func (k Key) Resolve(sub string) string {
	if k.templated {
		return k.head + sub + k.tail
	}
	return k.head
}

// Label returns the display label of a literal key.
func (k Key) Label() string {
	return k.Resolve("")
}

// Merge derives a literal key by joining the two canonical forms with a space.
func (k Key) Merge(other Key) Key {
	return Literal(k.String() + " " + other.String())
}

// Section headers.
var (
	OntologySourceReference   = Literal("ONTOLOGY SOURCE REFERENCE")
	InvestigationSection      = Literal("INVESTIGATION")
	InvestigationPublications = Literal("INVESTIGATION PUBLICATIONS")
	InvestigationContacts     = Literal("INVESTIGATION CONTACTS")
	StudySection              = Literal("STUDY")
	StudyDesignDescriptors    = Literal("STUDY DESIGN DESCRIPTORS")
	StudyPublications         = Literal("STUDY PUBLICATIONS")
	StudyContacts             = Literal("STUDY CONTACTS")
)

// Ontology source reference attributes.
var (
	TermSourceName        = Literal("Term Source Name")
	TermSourceFile        = Literal("Term Source File")
	TermSourceVersion     = Literal("Term Source Version")
	TermSourceDescription = Literal("Term Source Description")
)

// Suffixes of the lines derived from an ontology annotation.
var (
	TermAccessionNumber = Literal("Term Accession Number")
	TermSourceREF       = Literal("Term Source REF")
)

// Comment is the templated comment label.
var Comment = Template("Comment")

// Investigation attributes.
var (
	InvestigationIdentifier        = Literal("Investigation Identifier")
	InvestigationTitle             = Literal("Investigation Title")
	InvestigationDescription       = Literal("Investigation Description")
	InvestigationSubmissionDate    = Literal("Investigation Submission Date")
	InvestigationPublicReleaseDate = Literal("Investigation Public Release Date")
)

// Study attributes.
var (
	StudyIdentifier        = Literal("Study Identifier")
	StudyFileName          = Literal("Study File Name")
	StudyTitle             = Literal("Study Title")
	StudyDescription       = Literal("Study Description")
	StudySubmissionDate    = Literal("Study Submission Date")
	StudyPublicReleaseDate = Literal("Study Public Release Date")
	StudyDesignType        = Literal("Study Design Type")
)

// Scope is the prefix shared by the publication and contact labels of a
// section ("Investigation PubMed ID", "Study PubMed ID").
type Scope string

// Scopes of publication and contact sections.
const (
	ScopeInvestigation Scope = "Investigation"
	ScopeStudy         Scope = "Study"
)

func (s Scope) key(suffix string) Key {
	return Literal(string(s) + " " + suffix)
}

// PubMedID returns the "<scope> PubMed ID" key.
func (s Scope) PubMedID() Key { return s.key("PubMed ID") }

// PublicationDOI returns the "<scope> Publication DOI" key.
func (s Scope) PublicationDOI() Key { return s.key("Publication DOI") }

// PublicationAuthorList returns the "<scope> Publication Author List" key.
func (s Scope) PublicationAuthorList() Key { return s.key("Publication Author List") }

// PublicationTitle returns the "<scope> Publication Title" key.
func (s Scope) PublicationTitle() Key { return s.key("Publication Title") }

// PublicationStatus returns the "<scope> Publication Status" key.
func (s Scope) PublicationStatus() Key { return s.key("Publication Status") }

// PersonLastName returns the "<scope> Person Last Name" key.
func (s Scope) PersonLastName() Key { return s.key("Person Last Name") }

// PersonFirstName returns the "<scope> Person First Name" key.
func (s Scope) PersonFirstName() Key { return s.key("Person First Name") }

// PersonMidInitials returns the "<scope> Person Mid Initials" key.
func (s Scope) PersonMidInitials() Key { return s.key("Person Mid Initials") }

// PersonEmail returns the "<scope> Person Email" key.
func (s Scope) PersonEmail() Key { return s.key("Person Email") }

// PersonPhone returns the "<scope> Person Phone" key.
func (s Scope) PersonPhone() Key { return s.key("Person Phone") }

// PersonFax returns the "<scope> Person Fax" key.
func (s Scope) PersonFax() Key { return s.key("Person Fax") }

// PersonAddress returns the "<scope> Person Address" key.
func (s Scope) PersonAddress() Key { return s.key("Person Address") }

// PersonAffiliation returns the "<scope> Person Affiliation" key.
func (s Scope) PersonAffiliation() Key { return s.key("Person Affiliation") }

// PersonRoles returns the "<scope> Person Roles" key.
func (s Scope) PersonRoles() Key { return s.key("Person Roles") }

// Study and assay table headers. The table files themselves are not written
// by this package; TableColumns uses the vocabulary to lay out rows.
var (
	SourceName      = Literal("Source Name")
	SampleName      = Literal("Sample Name")
	Characteristics = Template("Characteristics")
	AssayName       = Literal("Assay Name")
	RawDataFile     = Literal("Raw Data File")
	ImageFile       = Literal("Image File")
	ParameterValue  = Template("Parameter Value")
	Unit            = Literal("Unit")
	DerivedDataFile = Literal("Derived Data File")
	ProtocolREF     = Literal("Protocol REF")
	ProtocolDate    = Literal("Date")
	FactorValue     = Template("Factor Value")
)
