// Package sanitize strips dangerous markup from user-supplied profile text
// before it is stored. Public profiles render these values to arbitrary
// viewers, so anything a browser could execute must not survive the write.
package sanitize

import "github.com/microcosm-cc/bluemonday"

var policy = bluemonday.StrictPolicy()

// Text sanitizes user-generated content. Profile fields are plain text,
// so every element is stripped outright; only the text content survives.
func Text(s string) string {
	return policy.Sanitize(s)
}
