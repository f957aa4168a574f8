package docstore

import "strings"

// MatchText reports whether any of fields contains q, ignoring case. Text
// search cannot be expressed as a JSON comparison, so callers fetch the
// ordered set and filter with it.
func MatchText(q string, fields ...string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
