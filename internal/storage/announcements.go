package storage

import (
	"fmt"

	"modhub/backend/internal/models"
)

func (s *Service) GetAnnouncements() []models.Announcement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valuesLocked(s.announcements, nil)
}

func (s *Service) CreateAnnouncement(message, html string) (*models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	announcement := models.Announcement{
		ID:        s.nextIDLocked(),
		Message:   message,
		HTML:      html,
		CreatedAt: s.now(),
	}
	s.announcements[announcement.ID] = announcement
	s.persistLocked()
	return &announcement, nil
}

func (s *Service) DeleteAnnouncement(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.announcements[id]; !ok {
		return fmt.Errorf("announcement %d: %w", id, ErrNotFound)
	}
	delete(s.announcements, id)
	s.persistLocked()
	return nil
}
