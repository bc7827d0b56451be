package view

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fields extracts the searchable text of a record.
type Fields[T any] func(T) []string

var folder = cases.Fold()

func fold(s string) string {
	return folder.String(s)
}

// Contains reports whether any field contains needle, ignoring case. An empty
// needle matches everything.
func Contains(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	n := fold(needle)
	for _, f := range fields {
		if strings.Contains(fold(f), n) {
			return true
		}
	}
	return false
}

// Filter returns the subsequence of items whose fields contain needle. The
// input order is kept and the input slice is returned as is when needle is
// empty.
func Filter[T any](items []T, needle string, fields Fields[T]) []T {
	if needle == "" || fields == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Contains(needle, fields(it)...) {
			out = append(out, it)
		}
	}
	return out
}
