package reminder

import (
	"context"
	"sync"

	"github.com/hablaai/habla/store"
)

// SentPush records one delivery attempt made through the MockPusher.
type SentPush struct {
	UserID   string
	Endpoint string
	Payload  []byte
}

// MockPusher is an in-memory Pusher for tests.
type MockPusher struct {
	mu   sync.Mutex
	sent []SentPush
	// FailWith maps an endpoint to the error its sends should return.
	FailWith map[string]error
}

// NewMockPusher creates an empty MockPusher.
func NewMockPusher() *MockPusher {
	return &MockPusher{FailWith: map[string]error{}}
}

// Send implements Pusher.
func (m *MockPusher) Send(_ context.Context, sub *store.PushSubscription, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailWith[sub.Endpoint]; ok {
		return err
	}
	m.sent = append(m.sent, SentPush{UserID: sub.UserID, Endpoint: sub.Endpoint, Payload: payload})
	return nil
}

// Sent returns a copy of all successful deliveries.
func (m *MockPusher) Sent() []SentPush {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentPush(nil), m.sent...)
}
