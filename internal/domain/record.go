package domain

import "strconv"

// Record is a single row of a remote table: the field map returned by the
// data service with the record id merged in under "id".
//
// The remote service is schemaless, so fields keep their raw JSON types.
// Link fields in particular may arrive either as a single id or as a list
// of ids; the accessors below normalize both forms so callers never branch
// on the representation.
type Record map[string]any

// ID returns the record identifier.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// String returns the field as a string, or "" when absent or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Bool returns the field as a boolean. Absent, null and non-boolean values
// read as false, matching how the remote service omits unchecked flags.
func (r Record) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

// Number coerces the field to a float64. The remote service may deliver
// numbers as JSON numbers, strings, or omit them entirely; anything that
// does not parse reads as zero so aggregation can sum blindly.
func (r Record) Number(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Links returns the set of record ids referenced by a link field,
// normalizing the scalar-or-list ambiguity into a uniform slice.
func (r Record) Links(field string) []string {
	switch v := r[field].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if id, ok := item.(string); ok {
				ids = append(ids, id)
			}
		}
		return ids
	case []string:
		return v
	default:
		return nil
	}
}

// FirstLink returns the first referenced id of a link field, or "".
func (r Record) FirstLink(field string) string {
	links := r.Links(field)
	if len(links) == 0 {
		return ""
	}
	return links[0]
}

// HasLink reports whether a link field references the given id, treating a
// scalar id and a list containing it as equivalent.
func (r Record) HasLink(field, id string) bool {
	for _, link := range r.Links(field) {
		if link == id {
			return true
		}
	}
	return false
}
