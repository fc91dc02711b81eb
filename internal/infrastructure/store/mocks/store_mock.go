package mocks

import (
	"context"
	"encoding/json"
	"sync"
)

// MockStore is a mock implementation of store.Store for testing
type MockStore struct {
	mu   sync.RWMutex
	data map[string]string

	// For tracking calls in tests
	SetCalls    []SetCall
	RemoveCalls []string

	// Injected failures. FailKeys limits SetErr to the listed keys when non-empty.
	GetErr    error
	SetErr    error
	RemoveErr error
	FailKeys  map[string]bool
}

// SetCall records parameters passed to Set
type SetCall struct {
	Key   string
	Value string
}

// NewMockStore creates a new MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		data:        make(map[string]string),
		SetCalls:    make([]SetCall, 0),
		RemoveCalls: make([]string, 0),
	}
}

// Get returns the stored value
func (m *MockStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set records the call and stores the value unless an error is injected
func (m *MockStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: value})

	if m.SetErr != nil && (len(m.FailKeys) == 0 || m.FailKeys[key]) {
		return m.SetErr
	}
	m.data[key] = value
	return nil
}

// Remove records the call and deletes the key unless an error is injected
func (m *MockStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RemoveCalls = append(m.RemoveCalls, key)

	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.data, key)
	return nil
}

// SetCallsFor returns the recorded Set calls for one key
func (m *MockStore) SetCallsFor(key string) []SetCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var calls []SetCall
	for _, c := range m.SetCalls {
		if c.Key == key {
			calls = append(calls, c)
		}
	}
	return calls
}

// SetRaw stores a raw value directly for testing
func (m *MockStore) SetRaw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// SetData stores v as JSON directly for testing
func (m *MockStore) SetData(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.SetRaw(key, string(data))
	return nil
}

// GetRaw returns a raw value directly for testing
func (m *MockStore) GetRaw(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Reset clears all data and recorded calls
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	m.SetCalls = make([]SetCall, 0)
	m.RemoveCalls = make([]string, 0)
	m.GetErr = nil
	m.SetErr = nil
	m.RemoveErr = nil
	m.FailKeys = nil
}
