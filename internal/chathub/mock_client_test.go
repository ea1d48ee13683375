package chathub_test

import (
	"slices"
	"sync"

	"modhub/backend/internal/models"
)

// MockClient is a test double for chathub.Client with a buffered send channel.
type MockClient struct {
	userID int64
	topics []string
	send   chan models.Envelope

	mu     sync.Mutex
	closed bool
}

func newMockClient(userID int64, buffer int, topics ...string) *MockClient {
	return &MockClient{
		userID: userID,
		topics: topics,
		send:   make(chan models.Envelope, buffer),
	}
}

func (c *MockClient) GetUserID() int64                       { return c.userID }
func (c *MockClient) Subscribed(topic string) bool           { return slices.Contains(c.topics, topic) }
func (c *MockClient) GetSendChannel() chan<- models.Envelope { return c.send }
func (c *MockClient) Run()                                   {}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	close(c.send)
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// DrainMessages returns everything queued so far without blocking.
func (c *MockClient) DrainMessages() []models.Envelope {
	var out []models.Envelope
	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, env)
		default:
			return out
		}
	}
}
