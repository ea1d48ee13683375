package storage

import (
	"fmt"

	"modhub/backend/internal/models"
)

func (s *Service) GetUser(id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return &user, nil
}

// GetUserByUsername matches the username exactly.
func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range valuesLocked(s.users, nil) {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (s *Service) CreateUser(in models.InsertUser) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.createUserLocked(in)
	if err != nil {
		return nil, err
	}
	s.persistLocked()
	return user, nil
}

func (s *Service) createUserLocked(in models.InsertUser) (*models.User, error) {
	for _, existing := range s.users {
		if existing.Username == in.Username {
			return nil, fmt.Errorf("username %q: %w", in.Username, ErrConflict)
		}
	}

	user := models.User{
		ID:             s.nextIDLocked(),
		Username:       in.Username,
		PasswordHash:   in.PasswordHash,
		IsAdmin:        in.IsAdmin,
		Bio:            in.Bio,
		ProfilePicture: in.ProfilePicture,
	}
	s.users[user.ID] = user
	return &user, nil
}

// EnsureAdmin seeds an approved admin account when the store has no users.
// The bool reports whether an account was created.
func (s *Service) EnsureAdmin(username, passwordHash string) (*models.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) > 0 {
		return nil, false, nil
	}

	user, err := s.createUserLocked(models.InsertUser{
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      true,
	})
	if err != nil {
		return nil, false, err
	}
	user.IsProfileApproved = true
	s.users[user.ID] = *user
	s.persistLocked()
	return user, true, nil
}

func (s *Service) GetAllUsers() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valuesLocked(s.users, nil)
}

func (s *Service) GetReportedUsers() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valuesLocked(s.users, func(u models.User) bool { return u.IsReported })
}

func (s *Service) BanUser(id int64) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) { u.IsBanned = true })
}

func (s *Service) UnbanUser(id int64) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) { u.IsBanned = false })
}

// UpdateUserProfile replaces bio and picture when the new values are non-empty.
// Any edit sends the profile back to moderation.
func (s *Service) UpdateUserProfile(id int64, in models.UpdateUserProfile) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) {
		if in.Bio != "" {
			u.Bio = &in.Bio
		}
		if in.ProfilePicture != "" {
			u.ProfilePicture = &in.ProfilePicture
		}
		u.IsProfileApproved = false
	})
}

func (s *Service) ReportUser(id int64, reason string) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) {
		u.IsReported = true
		u.ReportReason = &reason
	})
}

func (s *Service) ApproveUserProfile(id int64) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) { u.IsProfileApproved = true })
}

func (s *Service) SetUserPassword(id int64, passwordHash string) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (s *Service) updateUser(id int64, apply func(u *models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	apply(&user)
	s.users[id] = user
	s.persistLocked()
	return &user, nil
}
