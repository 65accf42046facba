package greeting

import (
	"context"
	"sync"
)

// MockService implements Service for handler tests. It records every name it
// receives and returns Err when set.
type MockService struct {
	Err error

	mu    sync.Mutex
	names []string
}

// NewMockService creates a MockService that greets like Greeter.
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) Greet(ctx context.Context, name string) (*Greeting, error) {
	m.mu.Lock()
	m.names = append(m.names, name)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return NewGreeter().Greet(ctx, name)
}

// Names returns the names passed to Greet, in call order.
func (m *MockService) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names...)
}

var _ Service = (*MockService)(nil)
