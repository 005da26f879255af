package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
)

// MockSink implements io.Writer for testing output handling across packages
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Write(p []byte) (int, error) {
	args := m.Called(string(p))

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(string) int); ok {
		return fn(string(p)), args.Error(1)
	}

	if args.Get(0) == nil {
		return 0, args.Error(1)
	}
	return args.Get(0).(int), args.Error(1)
}

var _ io.Writer = (*MockSink)(nil)
