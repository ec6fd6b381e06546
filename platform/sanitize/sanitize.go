// Package sanitize cleans applicant-supplied text before it is stored.
// This is part of the platform layer and contains no business logic.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup from a string. Entities are decoded and the
// result is stripped again, so an encoded tag cannot survive one pass.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text prepares a user-provided field for storage. Utterances and intake
// fields end up in prompts, the transcript, and rendered letters, none of
// which may carry markup.
func Text(s string) string {
	return StripHTML(s)
}
