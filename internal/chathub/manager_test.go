package chathub_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"modhub/backend/internal/chathub"
	"modhub/backend/internal/models"
	"modhub/backend/internal/storage"
)

func startHub(t *testing.T, hub *chathub.ManagerService) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return cancel
}

func register(t *testing.T, hub *chathub.ManagerService, clients ...chathub.Client) {
	t.Helper()
	want := hub.ClientCount() + len(clients)
	for _, c := range clients {
		require.True(t, hub.Register(c))
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == want }, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *MockClient) models.Envelope {
	t.Helper()
	select {
	case env := <-c.send:
		return env
	case <-time.After(time.Second):
		t.Fatal("client did not receive an event")
		return models.Envelope{}
	}
}

func TestManager_RegisterUnregister(t *testing.T) {
	hub := chathub.NewManagerService(new(MockStorage), nil)
	startHub(t, hub)

	client := newMockClient(1, 4, models.TopicPublic)
	register(t, hub, client)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, client.IsClosed())

	// Повторне видалення не повинно панікувати на закритому каналі.
	hub.Unregister(client)
}

func TestManager_PublishRespectsTopics(t *testing.T) {
	hub := chathub.NewManagerService(new(MockStorage), nil)
	startHub(t, hub)

	visitor := newMockClient(0, 4, models.TopicPublic)
	user := newMockClient(2, 4, models.TopicPublic, models.UserTopic(2))
	admin := newMockClient(3, 4, models.TopicPublic, models.UserTopic(3), models.TopicAdmin)
	register(t, hub, visitor, user, admin)

	hub.PublishEvent(models.TopicPublic, models.EventAnnouncement, models.IDPayload{ID: 10})
	hub.PublishEvent(models.TopicAdmin, models.EventCommentReported, models.IDPayload{ID: 11})
	hub.PublishEvent(models.UserTopic(2), models.EventSupportTicketResolved, models.IDPayload{ID: 12})

	// Publish is synchronous, so everything is already queued.
	assert.Equal(t, []models.Envelope{
		{Type: models.EventAnnouncement, Data: models.IDPayload{ID: 10}},
	}, visitor.DrainMessages())

	assert.Equal(t, []models.Envelope{
		{Type: models.EventAnnouncement, Data: models.IDPayload{ID: 10}},
		{Type: models.EventSupportTicketResolved, Data: models.IDPayload{ID: 12}},
	}, user.DrainMessages())

	assert.Equal(t, []models.Envelope{
		{Type: models.EventAnnouncement, Data: models.IDPayload{ID: 10}},
		{Type: models.EventCommentReported, Data: models.IDPayload{ID: 11}},
	}, admin.DrainMessages())
}

func TestManager_FullBufferDropsEventButKeepsClient(t *testing.T) {
	hub := chathub.NewManagerService(new(MockStorage), nil)
	startHub(t, hub)

	slow := newMockClient(1, 1, models.TopicPublic)
	fast := newMockClient(2, 4, models.TopicPublic)
	register(t, hub, slow, fast)

	hub.PublishEvent(models.TopicPublic, models.EventAnnouncement, models.IDPayload{ID: 1})
	hub.PublishEvent(models.TopicPublic, models.EventAnnouncement, models.IDPayload{ID: 2})

	assert.Len(t, slow.DrainMessages(), 1)
	assert.Len(t, fast.DrainMessages(), 2)
	assert.Equal(t, 2, hub.ClientCount())
	assert.False(t, slow.IsClosed())
}

func TestManager_ChatIsStoredAndBroadcast(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewManagerService(store, trimFilter{})
	startHub(t, hub)

	saved := &models.ChatMessage{ID: 9, UserID: 7, Message: "[clean] hi"}
	store.On("GetUser", int64(7)).Return(&models.User{ID: 7, Username: "ana"}, nil)
	store.On("CreateChatMessage", int64(7), "[clean] hi").Return(saved, nil)

	sender := newMockClient(7, 4, models.TopicPublic)
	visitor := newMockClient(0, 4, models.TopicPublic)
	register(t, hub, sender, visitor)

	hub.Submit(chathub.Inbound{Client: sender, Message: "hi"})

	for _, c := range []*MockClient{sender, visitor} {
		env := receive(t, c)
		assert.Equal(t, models.EventChat, env.Type)
		assert.Equal(t, saved, env.Data)
	}
	store.AssertExpectations(t)
}

func TestManager_ChatRejections(t *testing.T) {
	tests := []struct {
		name    string
		userID  int64
		message string
		setup   func(s *MockStorage)
		want    string
	}{
		{
			name:    "anonymous sender",
			userID:  0,
			message: "hi",
			setup:   func(s *MockStorage) {},
			want:    "Login required to chat",
		},
		{
			name:    "unknown user",
			userID:  5,
			message: "hi",
			setup: func(s *MockStorage) {
				s.On("GetUser", int64(5)).Return(nil, storage.ErrNotFound)
			},
			want: "Login required to chat",
		},
		{
			name:    "banned user",
			userID:  5,
			message: "hi",
			setup: func(s *MockStorage) {
				s.On("GetUser", int64(5)).Return(&models.User{ID: 5, IsBanned: true}, nil)
			},
			want: "Banned users cannot chat",
		},
		{
			name:    "empty after cleaning",
			userID:  5,
			message: "   ",
			setup: func(s *MockStorage) {
				s.On("GetUser", int64(5)).Return(&models.User{ID: 5}, nil)
			},
			want: "Message is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStorage)
			tt.setup(store)
			hub := chathub.NewManagerService(store, trimFilter{})
			startHub(t, hub)

			sender := newMockClient(tt.userID, 4, models.TopicPublic)
			other := newMockClient(42, 4, models.TopicPublic)
			register(t, hub, sender, other)

			hub.Submit(chathub.Inbound{Client: sender, Message: tt.message})

			env := receive(t, sender)
			assert.Equal(t, models.EventError, env.Type)
			assert.Equal(t, models.ErrorPayload{Message: tt.want}, env.Data)
			assert.Empty(t, other.DrainMessages())
			store.AssertNotCalled(t, "CreateChatMessage", mock.Anything, mock.Anything)
		})
	}
}

func TestManager_SinksSeeEveryPublishedEvent(t *testing.T) {
	hub := chathub.NewManagerService(new(MockStorage), nil)
	sink := &recordingSink{}
	hub.AddSink(sink)

	hub.PublishEvent(models.TopicAdmin, models.EventUserReported, models.IDPayload{ID: 4})
	hub.PublishEvent(models.TopicPublic, models.EventAnnouncement, models.IDPayload{ID: 1})

	assert.Equal(t, []string{
		models.TopicAdmin + "/" + models.EventUserReported,
		models.TopicPublic + "/" + models.EventAnnouncement,
	}, sink.Events())
}

// fakeRelay records published events and lets the test inject remote ones.
type fakeRelay struct {
	mu        sync.Mutex
	published []string
	deliverCh chan func(topic string, env models.Envelope)
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{deliverCh: make(chan func(string, models.Envelope), 1)}
}

func (r *fakeRelay) Publish(_ context.Context, topic string, env models.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, topic+"/"+env.Type)
	return nil
}

func (r *fakeRelay) Subscribe(ctx context.Context, deliver func(topic string, env models.Envelope)) error {
	r.deliverCh <- deliver
	<-ctx.Done()
	return ctx.Err()
}

func (r *fakeRelay) Published() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.published...)
}

func TestManager_Relay(t *testing.T) {
	hub := chathub.NewManagerService(new(MockStorage), nil)
	relay := newFakeRelay()
	sink := &recordingSink{}
	hub.SetRelay(relay)
	hub.AddSink(sink)
	startHub(t, hub)

	client := newMockClient(1, 4, models.TopicPublic)
	register(t, hub, client)

	var deliver func(string, models.Envelope)
	select {
	case deliver = <-relay.deliverCh:
	case <-time.After(time.Second):
		t.Fatal("relay subscription was not started")
	}

	t.Run("local events are forwarded", func(t *testing.T) {
		hub.PublishEvent(models.TopicPublic, models.EventAnnouncement, models.IDPayload{ID: 1})
		require.Eventually(t, func() bool { return len(relay.Published()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, []string{"public/announcement"}, relay.Published())
		assert.Len(t, client.DrainMessages(), 1)
	})

	t.Run("remote events reach local clients only", func(t *testing.T) {
		deliver(models.TopicPublic, models.Envelope{Type: models.EventAnnouncementDeleted, Data: models.IDPayload{ID: 1}})

		env := receive(t, client)
		assert.Equal(t, models.EventAnnouncementDeleted, env.Type)
		// Remote events are neither re-published nor handed to sinks.
		assert.Len(t, relay.Published(), 1)
		assert.Len(t, sink.Events(), 1)
	})
}

func TestManager_StopClosesClients(t *testing.T) {
	hub := chathub.NewManagerService(new(MockStorage), nil)
	cancel := startHub(t, hub)

	client := newMockClient(1, 4, models.TopicPublic)
	register(t, hub, client)

	cancel()
	require.Eventually(t, client.IsClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())

	// Після зупинки хаб більше не приймає клієнтів.
	assert.False(t, hub.Register(newMockClient(2, 1, models.TopicPublic)))
}
