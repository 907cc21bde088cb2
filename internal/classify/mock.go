package classify

import (
	"context"
	"sync"
)

// MockClient is a test implementation of the Client interface. It returns
// canned responses in order and records every prompt it receives.
type MockClient struct {
	err       error
	responses []string
	prompts   []string
	calls     int
	mu        sync.Mutex
}

// NewMockClient creates a mock client that cycles through the given
// responses. With no responses it returns an empty string.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{responses: responses}
}

// NewFailingMockClient creates a mock client whose Complete always fails.
func NewFailingMockClient(err error) *MockClient {
	return &MockClient{err: err}
}

// Complete returns the next canned response or the configured error.
func (m *MockClient) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	m.calls++

	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	return m.responses[(m.calls-1)%len(m.responses)], nil
}

// Calls returns how many times Complete was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastPrompt returns the most recent prompt, or "" when none were made.
func (m *MockClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}
