// Package utils holds tiny helpers shared across the HTTP layer.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// number. Query-string pagination values (?page=, ?page_size=) run through
// here so a malformed parameter degrades to the default instead of failing
// the request.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
