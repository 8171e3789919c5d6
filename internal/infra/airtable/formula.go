package airtable

import (
	"fmt"
	"sort"
	"strings"
)

// Filter formulas are boolean expressions over field equality, evaluated
// remotely. Only equality and conjunction are needed by this application.

// Eq renders a {Field}=value comparison. Strings are single-quoted with
// embedded quotes escaped to keep the formula syntactically valid;
// booleans render as TRUE()/FALSE().
func Eq(field string, value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return fmt.Sprintf("{%s}=TRUE()", field)
		}
		return fmt.Sprintf("{%s}=FALSE()", field)
	case string:
		return fmt.Sprintf("{%s}='%s'", field, escape(v))
	default:
		return fmt.Sprintf("{%s}=%v", field, v)
	}
}

// And joins comparisons into an AND(...) conjunction. A single term is
// returned as-is.
func And(terms ...string) string {
	if len(terms) == 1 {
		return terms[0]
	}
	return fmt.Sprintf("AND(%s)", strings.Join(terms, ", "))
}

func escape(value string) string {
	return strings.ReplaceAll(value, "'", `\'`)
}

// buildFormula renders a where map as an equality conjunction. Keys are
// sorted so the same filter always produces the same formula.
func buildFormula(where map[string]any) string {
	if len(where) == 0 {
		return ""
	}
	fields := make([]string, 0, len(where))
	for field := range where {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		terms = append(terms, Eq(field, where[field]))
	}
	return And(terms...)
}
