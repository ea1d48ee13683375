package storage

import "modhub/backend/internal/models"

func (s *Service) GetChatMessages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valuesLocked(s.chatMessages, nil)
}

func (s *Service) CreateChatMessage(userID int64, message string) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.ChatMessage{
		ID:        s.nextIDLocked(),
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now(),
	}
	s.chatMessages[msg.ID] = msg
	s.persistLocked()
	return &msg, nil
}
