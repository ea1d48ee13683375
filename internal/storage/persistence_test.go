package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"modhub/backend/internal/models"
	"modhub/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPersister is a testify double for storage.Persister.
type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) Load(ctx context.Context) (*storage.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Snapshot), args.Error(1)
}

func (m *MockPersister) Save(ctx context.Context, snap *storage.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func TestFilePersister_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "store.json")
	ctx := context.Background()

	s := storage.NewStorageService(ctx, storage.NewFilePersister(path))
	user, err := s.CreateUser(models.InsertUser{Username: "rita", PasswordHash: "hash"})
	require.NoError(t, err)
	mod := createMod(t, s, "Textures", "hd")
	_, err = s.RateMod(mod.ID, 4)
	require.NoError(t, err)
	_, err = s.CreateComment(models.InsertComment{ModID: mod.ID, UserID: &user.ID, Name: "rita", Content: "nice"})
	require.NoError(t, err)
	_, err = s.CreateSupportTicket(models.InsertSupportTicket{UserID: user.ID, Subject: "s", Message: "m"})
	require.NoError(t, err)
	_, err = s.CreateChatMessage(user.ID, "oi")
	require.NoError(t, err)

	restored := storage.NewStorageService(ctx, storage.NewFilePersister(path))

	gotUser, err := restored.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", gotUser.PasswordHash)

	gotMod, err := restored.GetModByID(mod.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), gotMod.Rating)
	assert.Equal(t, []string{"hd"}, []string(gotMod.Tags))
	assert.True(t, mod.CreatedAt.Equal(gotMod.CreatedAt))

	assert.Len(t, restored.GetCommentsByModID(mod.ID), 1)
	assert.Len(t, restored.GetSupportTickets(), 1)
	assert.Len(t, restored.GetChatMessages(), 1)

	next, err := restored.CreateAnnouncement("after restart", "")
	require.NoError(t, err)
	assert.Equal(t, int64(6), next.ID, "the counter continues after a restart")
}

func TestFilePersister_DocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s := storage.NewStorageService(context.Background(), storage.NewFilePersister(path))
	_, err := s.CreateUser(models.InsertUser{Username: "rita"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"users", "mods", "comments", "announcements", "chatMessages", "supportTickets", "currentId"} {
		assert.Contains(t, doc, key)
	}

	var users [][]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["users"], &users))
	require.Len(t, users, 1)
	require.Len(t, users[0], 2, "entries are [id, record] pairs")
	assert.JSONEq(t, "1", string(users[0][0]))

	var record map[string]any
	require.NoError(t, json.Unmarshal(users[0][1], &record))
	assert.Equal(t, "rita", record["username"])
	assert.JSONEq(t, "2", string(doc["currentId"]))
}

func TestFilePersister_MissingFileStartsEmpty(t *testing.T) {
	p := storage.NewFilePersister(filepath.Join(t.TempDir(), "absent.json"))

	snap, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)

	s := storage.NewStorageService(context.Background(), p)
	assert.Empty(t, s.GetAllUsers())
	assert.Equal(t, int64(1), s.Snapshot().CurrentID)
}

func TestFilePersister_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := storage.NewStorageService(context.Background(), storage.NewFilePersister(path))
	assert.Empty(t, s.GetMods())

	mod := createMod(t, s, "Textures")
	assert.Equal(t, int64(1), mod.ID)

	restored := storage.NewStorageService(context.Background(), storage.NewFilePersister(path))
	assert.Len(t, restored.GetMods(), 1, "the next save overwrites the corrupt file")
}

func TestEntry_RejectsMalformedPairs(t *testing.T) {
	var e storage.Entry[models.User]
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &e))
	assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &e))
	assert.Error(t, json.Unmarshal([]byte(`["x", {}]`), &e))

	require.NoError(t, json.Unmarshal([]byte(`[3, {"id":3,"username":"ana"}]`), &e))
	assert.Equal(t, int64(3), e.ID)
	assert.Equal(t, "ana", e.Value.Username)
}

func TestService_CounterBehindStoredIDsIsAdvanced(t *testing.T) {
	p := new(MockPersister)
	p.On("Load", mock.Anything).Return(&storage.Snapshot{
		Mods:      []storage.Entry[models.Mod]{{ID: 10, Value: models.Mod{ID: 10, Title: "old"}}},
		CurrentID: 3,
	}, nil)
	p.On("Save", mock.Anything, mock.Anything).Return(nil)

	s := storage.NewStorageService(context.Background(), p)
	mod := createMod(t, s, "new")

	assert.Equal(t, int64(11), mod.ID)
}

func TestService_SaveFailureIsSwallowed(t *testing.T) {
	p := new(MockPersister)
	p.On("Load", mock.Anything).Return(nil, nil)
	p.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	s := storage.NewStorageService(context.Background(), p)
	mod := createMod(t, s, "Textures")

	got, err := s.GetModByID(mod.ID)
	require.NoError(t, err)
	assert.Equal(t, "Textures", got.Title, "in-memory state survives a failed save")
	p.AssertNumberOfCalls(t, "Save", 1)
}

func TestService_LoadFailureStartsEmpty(t *testing.T) {
	p := new(MockPersister)
	p.On("Load", mock.Anything).Return(nil, errors.New("connection refused"))

	s := storage.NewStorageService(context.Background(), p)

	assert.Empty(t, s.GetAllUsers())
	p.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_EveryMutationSaves(t *testing.T) {
	p := new(MockPersister)
	p.On("Load", mock.Anything).Return(nil, nil)
	p.On("Save", mock.Anything, mock.Anything).Return(nil)

	s := storage.NewStorageService(context.Background(), p)
	mod := createMod(t, s, "Textures")
	_, err := s.RateMod(mod.ID, 5)
	require.NoError(t, err)
	_ = s.GetMods()
	_ = s.SearchMods("tex")

	p.AssertNumberOfCalls(t, "Save", 2)
}
