package recognize

import (
	"context"
	"sync"
)

// Mock is a scriptable engine for tests.
type Mock struct {
	mu sync.Mutex

	// RecognizeFunc, when set, handles every call.
	RecognizeFunc func(ctx context.Context, image []byte) ([]string, error)

	// Calls counts Recognize invocations.
	Calls int
}

// Name returns the engine identifier.
func (m *Mock) Name() string { return "mock" }

// Recognize delegates to RecognizeFunc or returns nothing.
func (m *Mock) Recognize(ctx context.Context, image []byte) ([]string, error) {
	m.mu.Lock()
	m.Calls++
	fn := m.RecognizeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, image)
	}
	return nil, nil
}
