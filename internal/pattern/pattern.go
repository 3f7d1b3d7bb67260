// Package pattern holds the regex and heuristic definitions shared by the
// extraction and protection pipeline: placeholder detection, URL detection,
// proper-noun heuristics and the JSON schema registry.
package pattern

import "regexp"

var (
	// Placeholder matches curly-brace tokens like {url} or {user_name}.
	Placeholder = regexp.MustCompile(`\{[^}]+\}`)

	// URL matches http(s) links embedded in text.
	URL = regexp.MustCompile(`https?://[^\s<>"]+`)

	// properNoun matches capitalized words, optionally chained
	// ("Acme Cloud Storage").
	properNoun = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*)*\b`)

	// acronym matches all-caps tokens of 2+ letters (API, SDK, GmbH fails on purpose).
	acronym = regexp.MustCompile(`\b[A-Z]{2,}\b`)
)

// FindPlaceholders returns every curly-brace placeholder in text, in order
// of appearance, without deduplication.
func FindPlaceholders(text string) []string {
	return Placeholder.FindAllString(text, -1)
}

// FindURLs returns every URL in text in order of appearance.
func FindURLs(text string) []string {
	return URL.FindAllString(text, -1)
}
