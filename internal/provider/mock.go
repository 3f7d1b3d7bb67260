package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a deterministic backend for tests. Unknown texts come
// back bracketed so assertions can tell them apart from real mappings.
type MockProvider struct {
	mu           sync.Mutex
	Translations map[string]string
	callCount    int
	Err          error
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Translations: make(map[string]string)}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Translate(_ context.Context, req TranslateRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = fmt.Sprintf("[%s→%s]", text, req.TargetLang)
		}
	}
	return results, nil
}

// CallCount reports how many times Translate ran.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.Err = nil
}

var _ Provider = (*MockProvider)(nil)
