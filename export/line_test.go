package export_test

import (
	"strings"
	"testing"

	"github.com/c360studio/isatab/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLine(t *testing.T) {
	line := export.BuildLine("Term Source Name", []string{"OBI", "NCBITaxon"}, func(s string) string { return s })
	assert.Equal(t, "Term Source Name\tOBI\tNCBITaxon\n", line)
}

func TestBuildLine_NoItems(t *testing.T) {
	line := export.BuildLine("Term Source Name", []string(nil), func(s string) string { return s })
	assert.Equal(t, "Term Source Name\t\n", line)
}

func TestBuildLine_PadsMissingValues(t *testing.T) {
	type contact struct{ email *string }
	email := "jane@example.org"

	for n := 0; n <= 5; n++ {
		items := make([]contact, n)
		if n > 1 {
			items[1].email = &email
		}
		line := export.BuildLine("Investigation Person Email", items, func(c contact) string {
			if c.email == nil {
				return ""
			}
			return *c.email
		})

		require.True(t, strings.HasSuffix(line, "\n"))
		fields := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
		assert.Equal(t, "Investigation Person Email", fields[0])
		if n == 0 {
			assert.Equal(t, []string{""}, fields[1:], "an empty list still ends the label with a tab")
			continue
		}
		assert.Len(t, fields[1:], n, "one column per item")
	}
}

func TestBuildLine_DoesNotMutateItems(t *testing.T) {
	items := []string{"b", "a"}
	export.BuildLine("Label", items, strings.ToUpper)
	assert.Equal(t, []string{"b", "a"}, items)
}
