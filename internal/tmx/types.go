// Package tmx implements translation-memory storage, TMX 1.4 exchange and
// fuzzy matching of source segments against remembered translations.
package tmx

import "sync"

// Unit is one aligned source/target segment pair.
type Unit struct {
	SourceText string
	TargetText string
	SourceLang string
	TargetLang string
	Quality    int // 0 when the memory recorded none
	UsageCount int
	Context    string
}

// Memory owns a list of units plus the set of target languages observed.
// Add may be called while other goroutines query through FindMatches or
// Write; direct reads of Units are only safe once no writer is active.
type Memory struct {
	mu              sync.RWMutex
	Units           []Unit
	TargetLanguages map[string]bool
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{TargetLanguages: make(map[string]bool)}
}

// Add appends a unit and records its target language.
func (m *Memory) Add(u Unit) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Units = append(m.Units, u)
	if m.TargetLanguages == nil {
		m.TargetLanguages = make(map[string]bool)
	}
	if u.TargetLang != "" {
		m.TargetLanguages[u.TargetLang] = true
	}
}

// Len reports the number of stored units.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Units)
}

// MatchType classifies a match result.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchFuzzy   MatchType = "fuzzy"
	MatchPartial MatchType = "partial"
)

// Match is a scored candidate translation, derived per query and never
// stored back into the memory.
type Match struct {
	Unit  Unit
	Score int // 0..100
	Type  MatchType
}
