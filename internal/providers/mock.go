package providers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MockProvider is a configurable test double. It records every request it
// receives and returns canned responses, with optional latency and
// injected failures.
type MockProvider struct {
	// NameVal is returned from Name(). Defaults to "mock".
	NameVal string

	// Response is returned from Generate and streamed by Stream when
	// Fragments is empty.
	Response string

	// Fragments, when set, is streamed fragment by fragment.
	Fragments []string

	// Latency simulates processing time per call.
	Latency time.Duration

	// Err, when set, is returned from every call.
	Err error

	// FailAfter makes calls fail with Err after this many successes.
	// Zero means never.
	FailAfter int

	requestCount atomic.Int64

	mu       sync.Mutex
	requests []*Request
}

// Name returns the configured provider name.
func (m *MockProvider) Name() string {
	if m.NameVal == "" {
		return "mock"
	}
	return m.NameVal
}

// Generate records the request and returns the canned response.
func (m *MockProvider) Generate(ctx context.Context, req *Request) (string, error) {
	if err := m.begin(ctx, req); err != nil {
		return "", err
	}
	return m.Response, nil
}

// Stream records the request and delivers the canned fragments, or the
// whole Response as a single fragment.
func (m *MockProvider) Stream(ctx context.Context, req *Request, onFragment FragmentFunc) error {
	if err := m.begin(ctx, req); err != nil {
		return err
	}

	fragments := m.Fragments
	if len(fragments) == 0 && m.Response != "" {
		fragments = []string{m.Response}
	}
	for _, f := range fragments {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := onFragment(f); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockProvider) begin(ctx context.Context, req *Request) error {
	count := m.requestCount.Add(1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Latency > 0 {
		if err := sleepCtx(ctx, m.Latency); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if m.Err != nil {
		if m.FailAfter == 0 || count > int64(m.FailAfter) {
			return m.Err
		}
	}
	return nil
}

// RequestCount returns the number of calls received.
func (m *MockProvider) RequestCount() int {
	return int(m.requestCount.Load())
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Requests returns a copy of all recorded requests.
func (m *MockProvider) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears recorded requests and the call counter.
func (m *MockProvider) Reset() {
	m.requestCount.Store(0)
	m.mu.Lock()
	m.requests = nil
	m.mu.Unlock()
}

// Verify interface
var _ Provider = (*MockProvider)(nil)
