// Package storage keeps every entity of the platform in memory and mirrors the
// whole state to a Persister after each mutation.
package storage

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"modhub/backend/internal/logger"
	"modhub/backend/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidRating = errors.New("rating out of range")
)

const saveTimeout = 10 * time.Second

type Storage interface {
	GetUser(id int64) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	CreateUser(in models.InsertUser) (*models.User, error)
	BanUser(id int64) (*models.User, error)
	UnbanUser(id int64) (*models.User, error)
	GetAllUsers() []models.User
	UpdateUserProfile(id int64, in models.UpdateUserProfile) (*models.User, error)
	ReportUser(id int64, reason string) (*models.User, error)
	GetReportedUsers() []models.User
	ApproveUserProfile(id int64) (*models.User, error)
	SetUserPassword(id int64, passwordHash string) (*models.User, error)
	EnsureAdmin(username, passwordHash string) (*models.User, bool, error)

	GetMods() []models.Mod
	GetModByID(id int64) (*models.Mod, error)
	CreateMod(in models.InsertMod) (*models.Mod, error)
	UpdateMod(id int64, in models.UpdateMod) (*models.Mod, error)
	DeleteMod(id int64) error
	RateMod(id int64, rating int) (*models.Mod, error)
	SearchMods(query string) []models.Mod

	GetCommentByID(id int64) (*models.Comment, error)
	GetCommentsByModID(modID int64) []models.Comment
	CreateComment(in models.InsertComment) (*models.Comment, error)
	ReportComment(id int64, reason string) (*models.Comment, error)
	GetReportedComments() []models.Comment
	ResolveReportedComment(id int64) (*models.Comment, error)
	GetRepliesByCommentID(id int64) []models.Comment

	CreateSupportTicket(in models.InsertSupportTicket) (*models.SupportTicket, error)
	GetSupportTickets() []models.SupportTicket
	GetSupportTicketByID(id int64) (*models.SupportTicket, error)
	UpdateSupportTicket(id int64, in models.UpdateSupportTicket) (*models.SupportTicket, error)

	GetAnnouncements() []models.Announcement
	CreateAnnouncement(message, html string) (*models.Announcement, error)
	DeleteAnnouncement(id int64) error

	GetChatMessages() []models.ChatMessage
	CreateChatMessage(userID int64, message string) (*models.ChatMessage, error)
}

// Service is the in-memory Storage. All entity kinds draw ids from one counter.
type Service struct {
	mu sync.RWMutex

	users          map[int64]models.User
	mods           map[int64]models.Mod
	comments       map[int64]models.Comment
	announcements  map[int64]models.Announcement
	chatMessages   map[int64]models.ChatMessage
	supportTickets map[int64]models.SupportTicket
	currentID      int64

	persister Persister
	log       *slog.Logger
	now       func() time.Time
}

var _ Storage = (*Service)(nil)

// NewStorageService restores the last snapshot from p. A missing or unreadable
// snapshot leaves the store empty. A nil p keeps the store memory-only.
func NewStorageService(ctx context.Context, p Persister) *Service {
	s := &Service{
		users:          make(map[int64]models.User),
		mods:           make(map[int64]models.Mod),
		comments:       make(map[int64]models.Comment),
		announcements:  make(map[int64]models.Announcement),
		chatMessages:   make(map[int64]models.ChatMessage),
		supportTickets: make(map[int64]models.SupportTicket),
		currentID:      1,
		persister:      p,
		log:            logger.WithComponent("storage"),
		now:            time.Now,
	}
	if p == nil {
		return s
	}

	snap, err := p.Load(ctx)
	switch {
	case err != nil:
		s.log.Error("failed to load persisted state, starting empty", "error", err)
	case snap == nil:
		s.log.Info("no persisted state found, starting empty")
	default:
		s.restore(snap)
		s.log.Info("store restored",
			"users", len(s.users),
			"mods", len(s.mods),
			"comments", len(s.comments),
			"current_id", s.currentID,
		)
	}
	return s
}

// Snapshot returns a copy of the whole state in persisted form.
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() *Snapshot {
	return &Snapshot{
		Users:          entriesOf(s.users),
		Mods:           entriesOf(s.mods),
		Comments:       entriesOf(s.comments),
		Announcements:  entriesOf(s.announcements),
		ChatMessages:   entriesOf(s.chatMessages),
		SupportTickets: entriesOf(s.supportTickets),
		CurrentID:      s.currentID,
	}
}

func (s *Service) restore(snap *Snapshot) {
	s.users = mapOf(snap.Users)
	s.mods = mapOf(snap.Mods)
	s.comments = mapOf(snap.Comments)
	s.announcements = mapOf(snap.Announcements)
	s.chatMessages = mapOf(snap.ChatMessages)
	s.supportTickets = mapOf(snap.SupportTickets)

	s.currentID = max(snap.CurrentID, 1)
	if highest := snap.maxID(); s.currentID <= highest {
		s.log.Warn("persisted counter is behind stored ids, advancing it",
			"current_id", snap.CurrentID, "max_id", highest)
		s.currentID = highest + 1
	}
}

// nextIDLocked hands out the current counter value and advances it.
func (s *Service) nextIDLocked() int64 {
	id := s.currentID
	s.currentID++
	return id
}

// persistLocked writes the full state. Failures are logged and never reach the caller.
func (s *Service) persistLocked() {
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.persister.Save(ctx, s.snapshotLocked()); err != nil {
		s.log.Error("failed to persist store", "error", err)
	}
}

// valuesLocked returns the values of m in id order, filtered by keep when it is not nil.
func valuesLocked[T any](m map[int64]T, keep func(T) bool) []T {
	out := make([]T, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		v := m[id]
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}
