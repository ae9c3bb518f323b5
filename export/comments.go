package export

import (
	"slices"
	"strings"

	"github.com/c360studio/isatab/isa"
)

// AlignComments renders the comments of several entities as aligned
// "Comment[<type>]" lines. Each bucket holds the comments of one entity and
// becomes one column. Rows follow the order in which comment types are first
// seen, scanning bucket 0 first; within a cell, same-typed comments of one
// bucket are joined by ";" in insertion order. Without any comment the result
// is empty.
func AlignComments(buckets [][]isa.Comment) string {
	types := commentTypes(buckets)
	if len(types) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, commentType := range types {
		sb.WriteString(BuildLine(Comment.Resolve(commentType), buckets, func(bucket []isa.Comment) string {
			return joinContents(bucket, commentType)
		}))
	}
	return sb.String()
}

// DirectComments renders a single entity's comments with one line per
// comment, without grouping by type. Investigation and study comments use
// this form.
func DirectComments(comments []isa.Comment) string {
	var sb strings.Builder
	for _, c := range comments {
		sb.WriteString(valueLine(Comment.Resolve(c.Type), c.Content))
	}
	return sb.String()
}

// commentTypes returns the distinct comment types in first-seen order.
func commentTypes(buckets [][]isa.Comment) []string {
	var types []string
	for _, bucket := range buckets {
		for _, c := range bucket {
			if !slices.Contains(types, c.Type) {
				types = append(types, c.Type)
			}
		}
	}
	return types
}

func joinContents(bucket []isa.Comment, commentType string) string {
	var contents []string
	for _, c := range bucket {
		if c.Type == commentType {
			contents = append(contents, c.Content)
		}
	}
	return strings.Join(contents, semicolon)
}

// commentBuckets collects one comment bucket per entity.
func commentBuckets[T any](items []T, comments func(T) []isa.Comment) [][]isa.Comment {
	buckets := make([][]isa.Comment, len(items))
	for i, item := range items {
		buckets[i] = comments(item)
	}
	return buckets
}
