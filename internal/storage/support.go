package storage

import (
	"fmt"

	"modhub/backend/internal/models"
)

func (s *Service) CreateSupportTicket(in models.InsertSupportTicket) (*models.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket := models.SupportTicket{
		ID:        s.nextIDLocked(),
		UserID:    in.UserID,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: s.now(),
		Status:    models.TicketPending,
	}
	s.supportTickets[ticket.ID] = ticket
	s.persistLocked()
	return &ticket, nil
}

func (s *Service) GetSupportTickets() []models.SupportTicket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valuesLocked(s.supportTickets, nil)
}

func (s *Service) GetSupportTicketByID(id int64) (*models.SupportTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.supportTickets[id]
	if !ok {
		return nil, fmt.Errorf("support ticket %d: %w", id, ErrNotFound)
	}
	return &ticket, nil
}

// UpdateSupportTicket applies the non-empty fields of in. Setting the status to
// resolvido stamps ResolvedAt every time, even if the ticket was already resolved.
func (s *Service) UpdateSupportTicket(id int64, in models.UpdateSupportTicket) (*models.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.supportTickets[id]
	if !ok {
		return nil, fmt.Errorf("support ticket %d: %w", id, ErrNotFound)
	}
	if in.Status != "" {
		ticket.Status = in.Status
	}
	if in.ResponseMessage != "" {
		response := in.ResponseMessage
		ticket.ResponseMessage = &response
	}
	if in.Status == models.TicketResolved {
		resolvedAt := s.now()
		ticket.ResolvedAt = &resolvedAt
	}
	s.supportTickets[id] = ticket
	s.persistLocked()
	return &ticket, nil
}
