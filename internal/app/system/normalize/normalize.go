// Package normalize holds the canonical forms for user-entered identity
// fields. Every write path goes through these before validation or storage
// so that lookups and uniqueness checks agree on one representation.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Username lowercases and trims a username. Usernames are compared
// case-insensitively everywhere (route params, uniqueness checks), so the
// stored form is always the folded one.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
