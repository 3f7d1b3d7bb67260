package pattern

import (
	"strings"
	"unicode"
)

// Suggestion is a candidate Do-Not-Translate term with a confidence score
// and a human-readable rationale.
type Suggestion struct {
	Term      string
	Score     float64 // 0.0 .. 1.0
	Rationale string
}

// Scorer scores a candidate term for DNT suitability. Implementations must
// be pure functions so they can be tested in isolation.
type Scorer func(term string, contextText string) Suggestion

// DefaultScorer applies the built-in heuristics: URLs and placeholders are
// near-certain, acronyms strong, repeated capitalized words moderate.
func DefaultScorer(term string, contextText string) Suggestion {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return Suggestion{Term: term, Score: 0, Rationale: "empty term"}
	}

	if Placeholder.MatchString(trimmed) && strings.HasPrefix(trimmed, "{") {
		return Suggestion{Term: trimmed, Score: 0.99, Rationale: "curly-brace placeholder"}
	}
	if URL.MatchString(trimmed) {
		return Suggestion{Term: trimmed, Score: 0.95, Rationale: "URL"}
	}
	if acronym.MatchString(trimmed) && strings.ToUpper(trimmed) == trimmed {
		return Suggestion{Term: trimmed, Score: 0.85, Rationale: "all-caps acronym"}
	}

	if isCapitalizedPhrase(trimmed) {
		// Mid-sentence capitalization is a stronger signal than
		// sentence-initial capitalization.
		occurrences := strings.Count(contextText, trimmed)
		midSentence := strings.Contains(contextText, " "+trimmed)
		score := 0.4
		rationale := "capitalized phrase"
		if midSentence {
			score = 0.6
			rationale = "capitalized mid-sentence"
		}
		if occurrences > 1 {
			score += 0.15
			rationale += ", repeated"
		}
		if score > 1 {
			score = 1
		}
		return Suggestion{Term: trimmed, Score: score, Rationale: rationale}
	}

	return Suggestion{Term: trimmed, Score: 0.1, Rationale: "no heuristic matched"}
}

// Suggest runs the scorer over candidate proper nouns found in text and
// returns the suggestions at or above minScore, in order of appearance.
func Suggest(text string, scorer Scorer, minScore float64) []Suggestion {
	if scorer == nil {
		scorer = DefaultScorer
	}

	var suggestions []Suggestion
	seen := make(map[string]bool)

	for _, candidate := range properNoun.FindAllString(text, -1) {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true

		s := scorer(candidate, text)
		if s.Score >= minScore {
			suggestions = append(suggestions, s)
		}
	}

	return suggestions
}

func isCapitalizedPhrase(s string) bool {
	for _, word := range strings.Fields(s) {
		runes := []rune(word)
		if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
			return false
		}
	}
	return len(s) > 0
}
