// Package glossary models user glossaries keyed by locale code. A glossary
// has no designated source column: every language is a peer, and a term is
// present for a language when its cell is non-empty.
package glossary

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// Entry is one glossary row: a map from locale code (e.g. "en-US") to the
// term in that language. Empty values mean "no translation recorded".
type Entry struct {
	Translations map[string]string
}

// Term returns the entry's value for the given locale code, matching the
// exact code first and then any code with the same language base.
func (e Entry) Term(locale string) string {
	if v, ok := e.Translations[locale]; ok {
		return v
	}

	want, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	wantBase, _ := want.Base()

	for code, v := range e.Translations {
		if v == "" {
			continue
		}
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		base, _ := tag.Base()
		if base == wantBase {
			return v
		}
	}
	return ""
}

// Has reports whether the entry has a non-empty value for the locale.
func (e Entry) Has(locale string) bool {
	return e.Term(locale) != ""
}

// Glossary is an ordered list of entries plus the set of locale codes seen
// in the source (column order preserved for export).
type Glossary struct {
	Languages []string
	Entries   []Entry
}

// TermsFor collects every non-empty term for the locale, in entry order.
func (g *Glossary) TermsFor(locale string) []string {
	var terms []string
	for _, e := range g.Entries {
		if t := e.Term(locale); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// DetectSourceLanguage guesses which glossary column holds the language of
// the given sample text, using per-term language detection. It returns the
// best-scoring locale code or empty when nothing matches.
func (g *Glossary) DetectSourceLanguage(sample string) string {
	detected := whatlanggo.DetectLang(sample).Iso6391()
	if detected == "" {
		return ""
	}

	for _, code := range g.Languages {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		base, _ := tag.Base()
		if base.String() == detected {
			return code
		}
	}
	return ""
}

// normalizeHeader trims a header cell into a locale code candidate.
func normalizeHeader(cell string) string {
	return strings.TrimSpace(cell)
}
