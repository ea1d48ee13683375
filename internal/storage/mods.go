package storage

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"gorm.io/datatypes"

	"modhub/backend/internal/config"
	"modhub/backend/internal/models"
)

func (s *Service) GetMods() []models.Mod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valuesLocked(s.mods, nil)
}

func (s *Service) GetModByID(id int64) (*models.Mod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mod, ok := s.mods[id]
	if !ok {
		return nil, fmt.Errorf("mod %d: %w", id, ErrNotFound)
	}
	return &mod, nil
}

func (s *Service) CreateMod(in models.InsertMod) (*models.Mod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mod := models.Mod{
		ID:          s.nextIDLocked(),
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		DownloadURL: in.DownloadURL,
		CreatedAt:   s.now(),
		Tags:        tagsOf(in.Tags),
	}
	s.mods[mod.ID] = mod
	s.persistLocked()
	return &mod, nil
}

// UpdateMod never touches the rating counters or the creation time.
func (s *Service) UpdateMod(id int64, in models.UpdateMod) (*models.Mod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mod, ok := s.mods[id]
	if !ok {
		return nil, fmt.Errorf("mod %d: %w", id, ErrNotFound)
	}
	if in.Title != "" {
		mod.Title = in.Title
	}
	if in.Description != "" {
		mod.Description = in.Description
	}
	if in.ImageURL != "" {
		mod.ImageURL = in.ImageURL
	}
	if in.DownloadURL != "" {
		mod.DownloadURL = in.DownloadURL
	}
	if in.Tags != nil {
		mod.Tags = tagsOf(in.Tags)
	}
	s.mods[id] = mod
	s.persistLocked()
	return &mod, nil
}

// DeleteMod removes the mod only. Its comments stay in the store.
func (s *Service) DeleteMod(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mods[id]; !ok {
		return fmt.Errorf("mod %d: %w", id, ErrNotFound)
	}
	delete(s.mods, id)
	s.persistLocked()
	return nil
}

// RateMod adds one vote. Votes are not deduplicated per user.
func (s *Service) RateMod(id int64, rating int) (*models.Mod, error) {
	if rating < config.MinRating || rating > config.MaxRating {
		return nil, fmt.Errorf("rating %d: %w", rating, ErrInvalidRating)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mod, ok := s.mods[id]
	if !ok {
		return nil, fmt.Errorf("mod %d: %w", id, ErrNotFound)
	}
	mod.Rating += int64(rating)
	mod.NumRatings++
	s.mods[id] = mod
	s.persistLocked()
	return &mod, nil
}

// SearchMods matches query case-insensitively against title, description and tags.
// An empty query returns every mod.
func (s *Service) SearchMods(query string) []models.Mod {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == "" {
		return valuesLocked(s.mods, nil)
	}

	fold := cases.Fold()
	needle := fold.String(query)
	matches := func(field string) bool {
		return strings.Contains(fold.String(field), needle)
	}

	return valuesLocked(s.mods, func(m models.Mod) bool {
		return matches(m.Title) || matches(m.Description) || slices.ContainsFunc(m.Tags, matches)
	})
}

func tagsOf(tags []string) datatypes.JSONSlice[string] {
	if tags == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.NewJSONSlice(slices.Clone(tags))
}
