// Package protect substitutes non-translatable spans (placeholders, user
// Do-Not-Translate terms, glossary hits) with opaque markers before text is
// handed to an external translator, and restores them afterwards.
package protect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lingokit/lingokit/internal/glossary"
	"github.com/lingokit/lingokit/internal/pattern"
)

// Substitution associates one minted marker with the value to re-insert at
// restoration: the untouched original for DNT/placeholder spans, the known
// target-language translation for glossary spans.
type Substitution struct {
	Marker string
	Value  string
}

// Encoded is the output of one encoding pass.
type Encoded struct {
	Processed     string
	Substitutions []Substitution

	// FullMatch signals that the entire trimmed input equals a glossary
	// entry's source value; Translation then carries the target-language
	// term and the caller can skip the external translator.
	FullMatch   bool
	Translation string
}

// candidate source ranks; lower wins ties at equal length.
const (
	rankPlaceholder = iota
	rankDNT
	rankGlossary
)

type candidate struct {
	term          string
	value         string // for glossary: target translation; empty for others
	caseSensitive bool
	rank          int
}

// Encode replaces protected spans in text with markers minted from a
// counter scoped to this pass. Candidate terms are gathered from
// auto-detected curly-brace placeholders, the user's DNT list, and glossary
// entries whose source-language value appears in the text; the union is
// matched longest-first in a single forward scan, so replacements never
// overlap.
func Encode(text string, dntTerms []string, entries []glossary.Entry, sourceLang, targetLang string) Encoded {
	trimmed := strings.TrimSpace(text)

	// Full-text shortcut: the whole segment is a known glossary term.
	for _, e := range entries {
		src := e.Term(sourceLang)
		tgt := e.Term(targetLang)
		if src != "" && tgt != "" && trimmed == src {
			return Encoded{
				Processed:   text,
				FullMatch:   true,
				Translation: tgt,
			}
		}
	}

	candidates := gatherCandidates(text, dntTerms, entries, sourceLang, targetLang)
	if len(candidates) == 0 {
		return Encoded{Processed: text}
	}

	parts := make([]string, len(candidates))
	for i, c := range candidates {
		quoted := regexp.QuoteMeta(c.term)
		if c.caseSensitive {
			parts[i] = quoted
		} else {
			parts[i] = "(?i:" + quoted + ")"
		}
	}
	re, err := regexp.Compile(strings.Join(parts, "|"))
	if err != nil {
		// Candidate terms are quoted, so this cannot happen for valid
		// UTF-8 input; fail open by leaving the text unprotected.
		return Encoded{Processed: text}
	}

	var subs []Substitution
	counter := 0

	processed := re.ReplaceAllStringFunc(text, func(match string) string {
		c, ok := resolveCandidate(candidates, match)
		if !ok {
			return match
		}

		marker := fmt.Sprintf("__DNT_%d__", counter)
		counter++

		value := match // DNT/placeholder: re-insert the original span
		if c.rank == rankGlossary {
			value = c.value // glossary: inject the known translation
		}
		subs = append(subs, Substitution{Marker: marker, Value: value})
		return marker
	})

	return Encoded{Processed: processed, Substitutions: subs}
}

// Restore replaces every recorded marker in the translated text with its
// stored value. Markers are mutually non-overlapping by construction, so
// the per-marker replacements are order-independent.
func Restore(translated string, subs []Substitution) string {
	restored := translated
	for _, s := range subs {
		restored = strings.ReplaceAll(restored, s.Marker, s.Value)
	}
	return restored
}

func gatherCandidates(text string, dntTerms []string, entries []glossary.Entry, sourceLang, targetLang string) []candidate {
	var candidates []candidate
	seen := make(map[string]bool)

	add := func(c candidate) {
		if c.term == "" || seen[c.term] {
			return
		}
		seen[c.term] = true
		candidates = append(candidates, c)
	}

	for _, ph := range pattern.FindPlaceholders(text) {
		add(candidate{term: ph, rank: rankPlaceholder})
	}
	for _, term := range dntTerms {
		add(candidate{term: strings.TrimSpace(term), rank: rankDNT})
	}
	for _, e := range entries {
		src := e.Term(sourceLang)
		tgt := e.Term(targetLang)
		if src == "" || tgt == "" {
			continue
		}
		// Glossary terms are matched case-sensitively.
		if strings.Contains(text, src) {
			add(candidate{term: src, value: tgt, caseSensitive: true, rank: rankGlossary})
		}
	}

	// Longest term wins; rank breaks ties, then lexical order for
	// determinism.
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i].term) != len(candidates[j].term) {
			return len(candidates[i].term) > len(candidates[j].term)
		}
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank < candidates[j].rank
		}
		return candidates[i].term < candidates[j].term
	})

	return candidates
}

func resolveCandidate(candidates []candidate, match string) (candidate, bool) {
	for _, c := range candidates {
		if c.caseSensitive {
			if match == c.term {
				return c, true
			}
		} else if strings.EqualFold(match, c.term) {
			return c, true
		}
	}
	return candidate{}, false
}
