package export_test

import (
	"testing"

	"github.com/c360studio/isatab/export"
	"github.com/c360studio/isatab/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source struct {
	headers []isa.TableHeader
}

func (s source) Fields() map[string][]string {
	fields := make(map[string][]string, len(s.headers))
	for _, h := range s.headers {
		fields[h.Label] = h.Values
	}
	return fields
}

func (s source) Headers() []isa.TableHeader { return s.headers }

func TestTableColumns(t *testing.T) {
	plant := source{headers: []isa.TableHeader{
		{Label: export.SourceName.Label(), Values: []string{"Plant 1"}},
		{Label: export.Characteristics.Resolve("Organism"), Values: []string{"Arabidopsis thaliana", "NCBITaxon", "http://purl.obolibrary.org/obo/NCBITaxon_3702"}},
		{Label: export.Characteristics.Resolve("Genotype"), Values: []string{"Col0"}},
		{Label: export.Comment.Resolve("Note")},
	}}

	headers, values, err := export.TableColumns(plant)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Source Name",
		"Characteristics[Organism]", "Term Source REF", "Term Accession Number",
		"Characteristics[Genotype]",
		"Comment[Note]",
	}, headers)
	assert.Equal(t, []string{
		"Plant 1",
		"Arabidopsis thaliana", "NCBITaxon", "http://purl.obolibrary.org/obo/NCBITaxon_3702",
		"Col0",
		"",
	}, values)
}

func TestTableColumns_TooManyValues(t *testing.T) {
	bad := source{headers: []isa.TableHeader{
		{Label: export.ParameterValue.Resolve("Container"), Values: []string{"pot", "AGRO", "AGRO_1", "extra"}},
	}}

	_, _, err := export.TableColumns(bad)
	assert.Error(t, err)
}
