package chathub_test

import (
	"sync"

	"modhub/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify double for chathub.ChatStore.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetUser(id int64) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) CreateChatMessage(userID int64, message string) (*models.ChatMessage, error) {
	args := m.Called(userID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

// recordingSink collects every event handed to it.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) Notify(topic string, env models.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, topic+"/"+env.Type)
}

func (s *recordingSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// trimFilter stands in for the moderation filter.
type trimFilter struct{}

func (trimFilter) Clean(text string) string {
	if text == "   " {
		return ""
	}
	return "[clean] " + text
}
