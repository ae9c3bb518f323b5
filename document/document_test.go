package document

import (
	"strings"
	"testing"
	"time"

	"github.com/c360studio/isatab/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	inv, err := Load("testdata/drought.yaml")
	require.NoError(t, err)

	assert.Equal(t, "INV-DROUGHT", inv.Identifier)
	assert.Equal(t, "Drought stress in barley", inv.Title)
	require.NotNil(t, inv.SubmissionDate)
	assert.Equal(t, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), *inv.SubmissionDate)
	require.NotNil(t, inv.PublicReleaseDate)
	assert.Equal(t, time.Date(2022, 1, 15, 9, 0, 0, 0, time.UTC), inv.PublicReleaseDate.UTC())
	assert.Equal(t, []isa.Comment{{Type: "Funding", Content: "DFG"}}, inv.Comments())

	require.Len(t, inv.Ontologies, 2)
	assert.Equal(t, "http://purl.obolibrary.org/obo/ncbitaxon.owl", inv.Ontologies[0].URL)

	require.Len(t, inv.Publications, 1)
	pub := inv.Publications[0]
	assert.Equal(t, []isa.Person{{FirstName: "Jane", LastName: "Doe"}, {FirstName: "Tom", LastName: "Lee"}}, pub.Authors)
	assert.Equal(t, "published", pub.Status.Term())
	assert.Nil(t, pub.Status.Source())

	require.Len(t, inv.Contacts, 2)
	obi, _ := inv.Ontology("OBI")
	assert.Same(t, obi, inv.Contacts[0].Roles.Source(), "annotation refers to the investigation's ontology")
	assert.Nil(t, inv.Contacts[1].Roles)

	require.Len(t, inv.Studies(), 1)
	study := inv.Studies()[0]
	assert.Equal(t, "s_S1.txt", study.FileName)
	assert.Nil(t, study.SubmissionDate)
	require.Len(t, study.DesignDescriptors, 1)
	assert.Equal(t, "intervention design", study.DesignDescriptors[0].Type.Term())
	assert.Equal(t, []isa.Comment{{Type: "Factor", Content: "watering"}}, study.DesignDescriptors[0].Comments())
	require.Len(t, study.Contacts, 1)
	assert.Equal(t, "Müller", study.Contacts[0].LastName)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "unknown ontology",
			yaml: `
contacts:
  - last_name: Doe
    roles: {term: author, source: EFO}
`,
			wantErr: ErrUnknownOntology,
		},
		{
			name: "empty term",
			yaml: `
publications:
  - title: x
    status: {accession: "EFO:1"}
`,
			wantErr: isa.ErrEmptyTerm,
		},
		{
			name:    "invalid date",
			yaml:    "submission_date: 04/03/2021\n",
			wantErr: ErrInvalidDate,
		},
		{
			name: "duplicate study identifier",
			yaml: `
studies:
  - {identifier: S1, file_name: s_a.txt}
  - {identifier: S1, file_name: s_b.txt}
`,
			wantErr: isa.ErrDuplicateStudy,
		},
		{
			name: "duplicate study file",
			yaml: `
studies:
  - {identifier: S1, file_name: s_a.txt}
  - {identifier: S2, file_name: s_a.txt}
`,
			wantErr: isa.ErrDuplicateStudy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.yaml))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader("identifier: [unterminated"))
	assert.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoIdentifier)
}

func TestDecode_RejectsForeignDocuments(t *testing.T) {
	t.Run("config file", func(t *testing.T) {
		_, err := Decode(strings.NewReader("output:\n  dir: out\nwatch:\n  debounce: 1s\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output")
	})

	t.Run("misspelled key", func(t *testing.T) {
		_, err := Decode(strings.NewReader("identifier: INV-1\ntitel: Drought\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "titel")
	})

	t.Run("no identifier", func(t *testing.T) {
		_, err := Decode(strings.NewReader("title: Drought\n"))
		assert.ErrorIs(t, err, ErrNoIdentifier)
	})
}

func TestDecode_Minimal(t *testing.T) {
	inv, err := Decode(strings.NewReader("identifier: INV-1\n"))
	require.NoError(t, err)
	assert.Equal(t, "INV-1", inv.Identifier)
	assert.Empty(t, inv.Studies())
}
