package isa

// TableHeader is one labelled group of cells of a study or assay table row.
// A characteristic with an ontology term, for example, carries the term, its
// source and its accession as three values.
type TableHeader struct {
	Label  string
	Values []string
}

// TableObject is implemented by nodes of a study or assay table (sources,
// samples, processes).
type TableObject interface {
	// Fields maps header labels to their values.
	Fields() map[string][]string
	// Headers returns the same data in column order.
	Headers() []TableHeader
}
