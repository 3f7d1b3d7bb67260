package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindPlaceholders(t *testing.T) {
	found := FindPlaceholders("Visit {url} or call {phone} today")
	assert.Equal(t, []string{"{url}", "{phone}"}, found)
}

func TestFindPlaceholders_None(t *testing.T) {
	assert.Empty(t, FindPlaceholders("no placeholders here"))
}

func TestFindURLs(t *testing.T) {
	found := FindURLs("See https://example.com/docs and http://other.test.")
	assert.Len(t, found, 2)
	assert.Equal(t, "https://example.com/docs", found[0])
}

func TestDefaultScorer_Placeholder(t *testing.T) {
	s := DefaultScorer("{user_name}", "Hello {user_name}")
	assert.Greater(t, s.Score, 0.9)
	assert.Equal(t, "curly-brace placeholder", s.Rationale)
}

func TestDefaultScorer_Acronym(t *testing.T) {
	s := DefaultScorer("API", "Use the API to connect")
	assert.GreaterOrEqual(t, s.Score, 0.8)
}

func TestDefaultScorer_MidSentenceCapitalized(t *testing.T) {
	mid := DefaultScorer("Acme", "We love Acme products")
	initial := DefaultScorer("Hello", "Hello there")
	assert.Greater(t, mid.Score, initial.Score)
}

func TestSuggest_FiltersByMinScore(t *testing.T) {
	suggestions := Suggest("Contact Acme Support about the API", nil, 0.5)

	terms := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		terms = append(terms, s.Term)
	}
	assert.Contains(t, terms, "API")
	for _, s := range suggestions {
		assert.GreaterOrEqual(t, s.Score, 0.5)
		assert.NotEmpty(t, s.Rationale)
	}
}

func TestSuggest_DeduplicatesCandidates(t *testing.T) {
	suggestions := Suggest("Acme here, Acme there, Acme everywhere", nil, 0)
	count := 0
	for _, s := range suggestions {
		if s.Term == "Acme" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
