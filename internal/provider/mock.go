package provider

import (
	"context"
	"sync"
)

// Mock is a scripted provider for tests. Unknown texts translate to
// "[text]" so assertions can tell a mock translation from a fallback.
type Mock struct {
	mu sync.Mutex

	Translations map[string]string // source text -> translation
	ModelName    string

	// Err, when set, fails the next FailCalls calls (all calls if
	// FailCalls is negative).
	Err       error
	FailCalls int

	// ReplyFor, when set, overrides the per-chunk reply entirely.
	ReplyFor func(texts []string) []string

	calls      int
	keysUsed   []string
	batchSizes []int
}

// NewMock creates a mock provider with no scripted translations.
func NewMock() *Mock {
	return &Mock{
		Translations: make(map[string]string),
		ModelName:    "mock-model",
	}
}

func (m *Mock) Model() string {
	return m.ModelName
}

func (m *Mock) TranslateBatch(ctx context.Context, apiKey string, texts []string, targetLang string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.keysUsed = append(m.keysUsed, apiKey)
	m.batchSizes = append(m.batchSizes, len(texts))

	if m.Err != nil && m.FailCalls != 0 {
		if m.FailCalls > 0 {
			m.FailCalls--
		}
		return nil, m.Err
	}

	if m.ReplyFor != nil {
		return m.ReplyFor(texts), nil
	}

	results := make([]string, len(texts))
	for i, text := range texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = "[" + text + "]"
		}
	}
	return results, nil
}

// Calls returns how many batch calls the mock has received.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// KeysUsed returns the API keys seen so far, in call order.
func (m *Mock) KeysUsed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.keysUsed))
	copy(out, m.keysUsed)
	return out
}

// BatchSizes returns the chunk sizes seen so far, in call order.
func (m *Mock) BatchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.batchSizes))
	copy(out, m.batchSizes)
	return out
}

var _ Provider = (*Mock)(nil)
