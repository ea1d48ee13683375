package storage

import (
	"fmt"

	"modhub/backend/internal/models"
)

func (s *Service) GetCommentByID(id int64) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return &comment, nil
}

func (s *Service) GetCommentsByModID(modID int64) []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valuesLocked(s.comments, func(c models.Comment) bool { return c.ModID == modID })
}

// CreateComment stores the comment as given. Reply targets are checked by the caller.
func (s *Service) CreateComment(in models.InsertComment) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment := models.Comment{
		ID:        s.nextIDLocked(),
		ModID:     in.ModID,
		UserID:    in.UserID,
		Name:      in.Name,
		Content:   in.Content,
		CreatedAt: s.now(),
		ReplyToID: in.ReplyToID,
	}
	s.comments[comment.ID] = comment
	s.persistLocked()
	return &comment, nil
}

// ReportComment flags the comment and reopens it if it was already resolved.
func (s *Service) ReportComment(id int64, reason string) (*models.Comment, error) {
	return s.updateComment(id, func(c *models.Comment) {
		c.IsReported = true
		c.ReportReason = &reason
		c.IsResolved = false
	})
}

// GetReportedComments lists every comment that was ever reported, resolved or not.
func (s *Service) GetReportedComments() []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valuesLocked(s.comments, func(c models.Comment) bool { return c.IsReported })
}

func (s *Service) ResolveReportedComment(id int64) (*models.Comment, error) {
	return s.updateComment(id, func(c *models.Comment) { c.IsResolved = true })
}

func (s *Service) GetRepliesByCommentID(id int64) []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valuesLocked(s.comments, func(c models.Comment) bool {
		return c.ReplyToID != nil && *c.ReplyToID == id
	})
}

func (s *Service) updateComment(id int64, apply func(c *models.Comment)) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	apply(&comment)
	s.comments[id] = comment
	s.persistLocked()
	return &comment, nil
}
