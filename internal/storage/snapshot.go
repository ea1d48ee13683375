package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"modhub/backend/internal/models"
)

// Persister stores and restores whole-store snapshots.
type Persister interface {
	// Load returns the last saved snapshot, or nil when nothing was saved yet.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// Snapshot is the persisted form of the store. Every collection is a list of
// [id, record] pairs in id order.
type Snapshot struct {
	Users          []Entry[models.User]          `json:"users"`
	Mods           []Entry[models.Mod]           `json:"mods"`
	Comments       []Entry[models.Comment]       `json:"comments"`
	Announcements  []Entry[models.Announcement]  `json:"announcements"`
	ChatMessages   []Entry[models.ChatMessage]   `json:"chatMessages"`
	SupportTickets []Entry[models.SupportTicket] `json:"supportTickets"`
	CurrentID      int64                         `json:"currentId"`
}

func (s *Snapshot) maxID() int64 {
	var highest int64
	for _, ids := range [][]int64{
		keysOf(s.Users), keysOf(s.Mods), keysOf(s.Comments),
		keysOf(s.Announcements), keysOf(s.ChatMessages), keysOf(s.SupportTickets),
	} {
		for _, id := range ids {
			highest = max(highest, id)
		}
	}
	return highest
}

// Entry is one [id, record] pair.
type Entry[T any] struct {
	ID    int64
	Value T
}

func (e Entry[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.ID, e.Value})
}

func (e *Entry[T]) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("entry must be an [id, record] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.ID); err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Value); err != nil {
		return fmt.Errorf("entry %d: %w", e.ID, err)
	}
	return nil
}

func entriesOf[T any](m map[int64]T) []Entry[T] {
	out := make([]Entry[T], 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, Entry[T]{ID: id, Value: m[id]})
	}
	return out
}

func mapOf[T any](entries []Entry[T]) map[int64]T {
	m := make(map[int64]T, len(entries))
	for _, e := range entries {
		m[e.ID] = e.Value
	}
	return m
}

func keysOf[T any](entries []Entry[T]) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
