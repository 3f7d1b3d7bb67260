package tmx

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// nearExactCutoff separates fuzzy matches from partial ones: a score above
// this (but below 100) is "fuzzy", anything at or below is "partial".
const nearExactCutoff = 85

// FindMatches scores sourceText against every unit in the memory that
// targets the requested language and returns the candidates at or above
// fuzzyThreshold, best first. An exact trimmed case-sensitive equality
// scores 100; otherwise similarity is the normalized Levenshtein ratio. No
// match above threshold yields an empty slice, never an error.
func FindMatches(sourceText string, mem *Memory, targetLang string, fuzzyThreshold int) []Match {
	if mem == nil {
		return nil
	}

	query := strings.TrimSpace(sourceText)
	var matches []Match

	mem.mu.RLock()
	defer mem.mu.RUnlock()
	for _, unit := range mem.Units {
		if !sameLanguage(unit.TargetLang, targetLang) {
			continue
		}

		candidate := strings.TrimSpace(unit.SourceText)
		var score int
		if candidate == query {
			score = 100
		} else {
			score = similarity(query, candidate)
		}
		if score < fuzzyThreshold && score != 100 {
			continue
		}

		m := Match{Unit: unit, Score: score}
		switch {
		case score == 100:
			m.Type = MatchExact
		case score > nearExactCutoff:
			m.Type = MatchFuzzy
		default:
			m.Type = MatchPartial
		}

		matches = append(matches, m)
	}

	// Stable sort keeps first-seen memory order as the final tiebreak.
	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		if matches[a].Unit.Quality != matches[b].Unit.Quality {
			return matches[a].Unit.Quality > matches[b].Unit.Quality
		}
		return matches[a].Unit.UsageCount > matches[b].Unit.UsageCount
	})

	return matches
}

// similarity returns the normalized Levenshtein similarity as 0..100.
func similarity(a, b string) int {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein(ra, rb)
	return (longest - dist) * 100 / longest
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// sameLanguage compares two locale codes by language base, so "fr" matches
// "fr-FR" and "fr_CA".
func sameLanguage(a, b string) bool {
	if a == b {
		return true
	}
	ta, errA := language.Parse(strings.ReplaceAll(a, "_", "-"))
	tb, errB := language.Parse(strings.ReplaceAll(b, "_", "-"))
	if errA != nil || errB != nil {
		return false
	}
	baseA, _ := ta.Base()
	baseB, _ := tb.Base()
	return baseA == baseB
}
