// Package normalize provides pure canonicalization helpers for matching
// externally-sourced identifiers. The functions are total: they never fail,
// they only distinguish "absent" (nil) from "present" results.
package normalize

import "strings"

// Phone canonicalizes a phone number to a digits-only string: a single
// leading '+' is dropped, then every non-digit character is removed.
// Empty or all-noise input yields nil. No country-code validation is
// performed; callers must not assume the result is dialable.
func Phone(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(s, "+")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	out := b.String()
	return &out
}

// ExternalID canonicalizes a source-supplied identifier (e.g. a payment
// barcode) into a matching key by stripping whitespace and the separator
// characters '.', '-' and '/'. The result is used only for equality
// comparison; the original value is what gets displayed and stored.
func ExternalID(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '.', '-', '/':
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return nil
	}
	out := b.String()
	return &out
}
