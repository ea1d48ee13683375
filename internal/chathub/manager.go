package chathub

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"modhub/backend/internal/logger"
	"modhub/backend/internal/models"
	"modhub/backend/internal/storage"
)

const relayPublishTimeout = 2 * time.Second

// ChatStore is the part of storage the hub needs for chat.
type ChatStore interface {
	GetUser(id int64) (*models.User, error)
	CreateChatMessage(userID int64, message string) (*models.ChatMessage, error)
}

// TextFilter cleans chat text before it is stored.
type TextFilter interface {
	Clean(text string) string
}

// Sink receives every event published on this instance, e.g. to alert admins.
// Notify must not block.
type Sink interface {
	Notify(topic string, env models.Envelope)
}

// Relay carries events between hub instances.
type Relay interface {
	Publish(ctx context.Context, topic string, env models.Envelope) error
	// Subscribe blocks until ctx is done, calling deliver for events published by other instances.
	Subscribe(ctx context.Context, deliver func(topic string, env models.Envelope)) error
}

// ManagerService is the realtime hub. It tracks connected clients and fans
// published events out to the ones subscribed to the event's topic.
type ManagerService struct {
	mu      sync.RWMutex
	Clients map[Client]struct{}

	IncomingCh   chan Inbound
	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage ChatStore
	Filter  TextFilter

	relay Relay
	sinks []Sink
	log   *slog.Logger
	done  chan struct{}
}

func NewManagerService(s ChatStore, filter TextFilter) *ManagerService {
	return &ManagerService{
		Clients:      make(map[Client]struct{}),
		IncomingCh:   make(chan Inbound, 64),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Storage:      s,
		Filter:       filter,
		log:          logger.WithComponent("chathub"),
		done:         make(chan struct{}),
	}
}

// SetRelay enables cross-instance delivery. Call before Run.
func (m *ManagerService) SetRelay(r Relay) {
	m.relay = r
}

// AddSink registers a sink. Call before Run.
func (m *ManagerService) AddSink(s Sink) {
	m.sinks = append(m.sinks, s)
}

// Run обробляє реєстрацію клієнтів і вхідні повідомлення чату, доки ctx не завершиться.
func (m *ManagerService) Run(ctx context.Context) {
	defer close(m.done)

	if m.relay != nil {
		go func() {
			err := m.relay.Subscribe(ctx, m.deliver)
			if err != nil && !errors.Is(err, context.Canceled) {
				m.log.Error("relay subscription stopped", "error", err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return

		case client := <-m.RegisterCh:
			m.mu.Lock()
			m.Clients[client] = struct{}{}
			m.mu.Unlock()
			m.log.Debug("client registered", "user_id", client.GetUserID(), "clients", m.ClientCount())

		case client := <-m.UnregisterCh:
			m.unregister(client)

		case in := <-m.IncomingCh:
			m.handleIncoming(in)
		}
	}
}

// Register hands client to the hub. It returns false once the hub has stopped.
func (m *ManagerService) Register(client Client) bool {
	select {
	case m.RegisterCh <- client:
		return true
	case <-m.done:
		return false
	}
}

func (m *ManagerService) Unregister(client Client) {
	select {
	case m.UnregisterCh <- client:
	case <-m.done:
	}
}

// Submit queues an inbound chat frame for the hub loop.
func (m *ManagerService) Submit(in Inbound) {
	select {
	case m.IncomingCh <- in:
	case <-m.done:
	}
}

// Publish queues env on every local client subscribed to topic and returns once
// all of them have it (or were skipped because their buffer is full). Sinks and
// the relay are notified after local delivery.
func (m *ManagerService) Publish(topic string, env models.Envelope) {
	m.deliver(topic, env)

	for _, sink := range m.sinks {
		sink.Notify(topic, env)
	}

	if m.relay != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
			defer cancel()
			if err := m.relay.Publish(ctx, topic, env); err != nil {
				m.log.Warn("relay publish failed", "type", env.Type, "topic", topic, "error", err)
			}
		}()
	}
}

// PublishEvent is a shorthand for Publish with a freshly built envelope.
func (m *ManagerService) PublishEvent(topic, eventType string, data any) {
	m.Publish(topic, models.Envelope{Type: eventType, Data: data})
}

func (m *ManagerService) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Clients)
}

// deliver fans env out to local clients only.
func (m *ManagerService) deliver(topic string, env models.Envelope) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for client := range m.Clients {
		if !client.Subscribed(topic) {
			continue
		}
		select {
		case client.GetSendChannel() <- env:
		default:
			// Повільний клієнт: подію пропускаємо, з'єднання лишаємо.
			m.log.Warn("client buffer full, dropping event",
				"user_id", client.GetUserID(), "type", env.Type)
		}
	}
}

func (m *ManagerService) unregister(client Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Clients[client]; !ok {
		return
	}
	delete(m.Clients, client)
	client.Close()
}

func (m *ManagerService) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for client := range m.Clients {
		delete(m.Clients, client)
		client.Close()
	}
}

func (m *ManagerService) handleIncoming(in Inbound) {
	userID := in.Client.GetUserID()
	if userID == 0 {
		m.reply(in.Client, "Login required to chat")
		return
	}

	user, err := m.Storage.GetUser(userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.log.Error("failed to load chat sender", "user_id", userID, "error", err)
		}
		m.reply(in.Client, "Login required to chat")
		return
	}
	if user.IsBanned {
		m.reply(in.Client, "Banned users cannot chat")
		return
	}

	text := in.Message
	if m.Filter != nil {
		text = m.Filter.Clean(text)
	}
	if text == "" {
		m.reply(in.Client, "Message is empty")
		return
	}

	msg, err := m.Storage.CreateChatMessage(user.ID, text)
	if err != nil {
		m.log.Error("failed to store chat message", "user_id", user.ID, "error", err)
		return
	}
	m.PublishEvent(models.TopicPublic, models.EventChat, msg)
}

// reply sends an error frame to a single client, dropping it if the client is gone or slow.
func (m *ManagerService) reply(client Client, message string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.Clients[client]; !ok {
		return
	}
	select {
	case client.GetSendChannel() <- models.Envelope{Type: models.EventError, Data: models.ErrorPayload{Message: message}}:
	default:
	}
}
