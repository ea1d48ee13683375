package chathub

import "modhub/backend/internal/models"

// Client is one realtime connection registered with the hub.
type Client interface {
	// GetUserID returns the account behind the connection, 0 for visitors.
	GetUserID() int64

	// Subscribed reports whether events published on topic should reach this client.
	Subscribed(topic string) bool

	// GetSendChannel returns the buffered channel the hub writes envelopes to.
	GetSendChannel() chan<- models.Envelope

	// Run starts the client's pumps.
	Run()
	// Close releases the send channel. The hub calls it exactly once, on unregister.
	Close()
}

// Inbound is a chat frame read from a client.
type Inbound struct {
	Client  Client
	Message string
}
