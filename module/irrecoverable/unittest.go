package irrecoverable

import (
	"context"
	"runtime"
	"testing"
)

// MockSignalerContext is a SignalerContext for tests. Every thrown error fails the test.
// Throw may be called from any goroutine, it terminates the calling goroutine like the
// production signaler does.
type MockSignalerContext struct {
	context.Context
	t testing.TB
}

var _ SignalerContext = (*MockSignalerContext)(nil)

func (m *MockSignalerContext) sealed() {}

func (m *MockSignalerContext) Throw(err error) {
	m.t.Errorf("unexpected irrecoverable error: %v", err)
	runtime.Goexit()
}

func NewMockSignalerContext(t testing.TB, ctx context.Context) *MockSignalerContext {
	return &MockSignalerContext{Context: ctx, t: t}
}

// NewMockSignalerContextWithCancel returns a MockSignalerContext derived from parent together
// with its cancel function.
func NewMockSignalerContextWithCancel(t testing.TB, parent context.Context) (*MockSignalerContext, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	return NewMockSignalerContext(t, ctx), cancel
}
