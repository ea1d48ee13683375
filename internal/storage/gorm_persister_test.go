package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"modhub/backend/internal/models"
	"modhub/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLitePersister(t *testing.T) *storage.GormPersister {
	t.Helper()
	db, err := storage.OpenDatabase("sqlite", filepath.Join(t.TempDir(), "modhub.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	p, err := storage.NewGormPersister(context.Background(), db)
	require.NoError(t, err)
	return p
}

func TestGormPersister_EmptyDatabaseHasNoSnapshot(t *testing.T) {
	p := newSQLitePersister(t)

	snap, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestGormPersister_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newSQLitePersister(t)

	s := storage.NewStorageService(ctx, p)
	user, err := s.CreateUser(models.InsertUser{Username: "rita", PasswordHash: "hash"})
	require.NoError(t, err)
	mod := createMod(t, s, "Textures", "hd", "graphics")
	comment, err := s.CreateComment(models.InsertComment{ModID: mod.ID, UserID: &user.ID, Name: "rita", Content: "nice"})
	require.NoError(t, err)
	_, err = s.ReportComment(comment.ID, "spam")
	require.NoError(t, err)
	ticket, err := s.CreateSupportTicket(models.InsertSupportTicket{UserID: user.ID, Subject: "s", Message: "m"})
	require.NoError(t, err)
	_, err = s.UpdateSupportTicket(ticket.ID, models.UpdateSupportTicket{Status: models.TicketResolved, ResponseMessage: "ok"})
	require.NoError(t, err)
	gone, err := s.CreateAnnouncement("temporary", "")
	require.NoError(t, err)
	require.NoError(t, s.DeleteAnnouncement(gone.ID))

	restored := storage.NewStorageService(ctx, p)

	gotMod, err := restored.GetModByID(mod.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hd", "graphics"}, []string(gotMod.Tags))

	reported := restored.GetReportedComments()
	require.Len(t, reported, 1)
	assert.Equal(t, "spam", *reported[0].ReportReason)
	require.NotNil(t, reported[0].UserID)
	assert.Equal(t, user.ID, *reported[0].UserID)

	gotTicket, err := restored.GetSupportTicketByID(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, gotTicket.Status)
	assert.NotNil(t, gotTicket.ResolvedAt)

	assert.Empty(t, restored.GetAnnouncements())
	assert.Equal(t, s.Snapshot().CurrentID, restored.Snapshot().CurrentID)
}
