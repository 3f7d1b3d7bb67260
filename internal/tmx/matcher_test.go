package tmx

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMemory() *Memory {
	mem := NewMemory()
	mem.Add(Unit{SourceText: "Hello world", TargetText: "Bonjour le monde", SourceLang: "en-US", TargetLang: "fr-FR"})
	mem.Add(Unit{SourceText: "Hello there", TargetText: "Salut", SourceLang: "en-US", TargetLang: "fr-FR"})
	mem.Add(Unit{SourceText: "Goodbye", TargetText: "Au revoir", SourceLang: "en-US", TargetLang: "fr-FR"})
	mem.Add(Unit{SourceText: "Hello world", TargetText: "Hola mundo", SourceLang: "en-US", TargetLang: "es-ES"})
	return mem
}

func TestFindMatches_ExactRankedFirst(t *testing.T) {
	matches := FindMatches("Hello world", sampleMemory(), "fr-FR", 60)

	require.NotEmpty(t, matches)
	assert.Equal(t, MatchExact, matches[0].Type)
	assert.Equal(t, 100, matches[0].Score)
	assert.Equal(t, "Bonjour le monde", matches[0].Unit.TargetText)
}

func TestFindMatches_ExactIsCaseSensitive(t *testing.T) {
	matches := FindMatches("hello world", sampleMemory(), "fr-FR", 0)

	require.NotEmpty(t, matches)
	assert.NotEqual(t, MatchExact, matches[0].Type)
	assert.Less(t, matches[0].Score, 100)
}

func TestFindMatches_TrimsBeforeComparing(t *testing.T) {
	matches := FindMatches("  Hello world  ", sampleMemory(), "fr-FR", 60)
	require.NotEmpty(t, matches)
	assert.Equal(t, 100, matches[0].Score)
}

func TestFindMatches_FiltersByTargetLanguage(t *testing.T) {
	matches := FindMatches("Hello world", sampleMemory(), "es-ES", 60)

	require.Len(t, matches, 1)
	assert.Equal(t, "Hola mundo", matches[0].Unit.TargetText)
}

func TestFindMatches_ThresholdFiltersLowScores(t *testing.T) {
	matches := FindMatches("Completely unrelated sentence", sampleMemory(), "fr-FR", 80)
	assert.Empty(t, matches)
}

func TestFindMatches_FuzzyVsPartial(t *testing.T) {
	mem := NewMemory()
	mem.Add(Unit{SourceText: "The quick brown fox jumps over the lazy dog", TargetText: "t1", TargetLang: "fr-FR"})

	// One character off: near-exact, classified fuzzy.
	matches := FindMatches("The quick brown fox jumps over the lazy dot", mem, "fr-FR", 50)
	require.Len(t, matches, 1)
	assert.Equal(t, MatchFuzzy, matches[0].Type)

	// Much further away but above threshold: partial.
	matches = FindMatches("The quick brown fox", mem, "fr-FR", 40)
	require.Len(t, matches, 1)
	assert.Equal(t, MatchPartial, matches[0].Type)
}

func TestFindMatches_TieBreakByQualityThenUsage(t *testing.T) {
	mem := NewMemory()
	mem.Add(Unit{SourceText: "Hello", TargetText: "low", TargetLang: "fr-FR", Quality: 10, UsageCount: 99})
	mem.Add(Unit{SourceText: "Hello", TargetText: "high", TargetLang: "fr-FR", Quality: 90, UsageCount: 1})
	mem.Add(Unit{SourceText: "Hello", TargetText: "used", TargetLang: "fr-FR", Quality: 10, UsageCount: 100})

	matches := FindMatches("Hello", mem, "fr-FR", 60)

	require.Len(t, matches, 3)
	assert.Equal(t, "high", matches[0].Unit.TargetText)
	assert.Equal(t, "used", matches[1].Unit.TargetText)
	assert.Equal(t, "low", matches[2].Unit.TargetText)
}

func TestFindMatches_FirstSeenOrderOnFullTie(t *testing.T) {
	mem := NewMemory()
	mem.Add(Unit{SourceText: "Hello", TargetText: "first", TargetLang: "fr-FR"})
	mem.Add(Unit{SourceText: "Hello", TargetText: "second", TargetLang: "fr-FR"})

	matches := FindMatches("Hello", mem, "fr-FR", 60)

	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].Unit.TargetText)
}

func TestFindMatches_NoMatchesIsEmptyNotError(t *testing.T) {
	matches := FindMatches("anything", NewMemory(), "fr-FR", 70)
	assert.Empty(t, matches)

	matches = FindMatches("anything", nil, "fr-FR", 70)
	assert.Empty(t, matches)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100, similarity("abc", "abc"))
	assert.Equal(t, 0, similarity("abc", "xyz"))
	assert.Greater(t, similarity("kitten", "sitting"), 50)
}

func TestFindMatches_ConcurrentWithAdd(t *testing.T) {
	mem := NewMemory()
	mem.Add(Unit{SourceText: "Hello", TargetText: "Bonjour", SourceLang: "en", TargetLang: "fr"})

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				mem.Add(Unit{
					SourceText: fmt.Sprintf("sentence %d-%d", w, i),
					TargetText: fmt.Sprintf("phrase %d-%d", w, i),
					SourceLang: "en",
					TargetLang: "fr",
				})
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				matches := FindMatches("Hello", mem, "fr", 75)
				require.NotEmpty(t, matches)
				assert.Equal(t, "Bonjour", matches[0].Unit.TargetText)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 801, mem.Len())
}
