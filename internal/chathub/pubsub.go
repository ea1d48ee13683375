package chathub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"modhub/backend/internal/logger"
	"modhub/backend/internal/models"
)

// relayMessage is the Redis payload. Data stays raw so it is forwarded byte for byte.
type relayMessage struct {
	InstanceID string          `json:"instanceId"`
	Topic      string          `json:"topic"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
}

// RedisRelay shares hub events between server instances over Redis Pub/Sub.
type RedisRelay struct {
	client     *redis.Client
	channel    string
	instanceID string
	log        *slog.Logger
}

func NewRedisRelay(client *redis.Client, channel string) *RedisRelay {
	return &RedisRelay{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		log:        logger.WithComponent("chathub.relay"),
	}
}

func (r *RedisRelay) InstanceID() string {
	return r.instanceID
}

func (r *RedisRelay) Publish(ctx context.Context, topic string, env models.Envelope) error {
	payload, err := r.encode(topic, env)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Subscribe слухає Redis Pub/Sub, доки ctx не завершиться. Власні події пропускаються.
func (r *RedisRelay) Subscribe(ctx context.Context, deliver func(topic string, env models.Envelope)) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.log.Info("relay subscribed", "channel", r.channel, "instance_id", r.instanceID)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			topic, env, own, err := r.decode([]byte(msg.Payload))
			if err != nil {
				r.log.Warn("dropping malformed relay message", "error", err)
				continue
			}
			if own {
				continue
			}
			deliver(topic, env)
		}
	}
}

func (r *RedisRelay) encode(topic string, env models.Envelope) ([]byte, error) {
	data, err := json.Marshal(env.Data)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", env.Type, err)
	}
	return json.Marshal(relayMessage{
		InstanceID: r.instanceID,
		Topic:      topic,
		Type:       env.Type,
		Data:       data,
	})
}

// decode reports own=true for messages this instance published itself.
func (r *RedisRelay) decode(payload []byte) (topic string, env models.Envelope, own bool, err error) {
	var msg relayMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return "", models.Envelope{}, false, err
	}
	if msg.Topic == "" || msg.Type == "" {
		return "", models.Envelope{}, false, errors.New("relay message without topic or type")
	}
	env = models.Envelope{Type: msg.Type, Data: msg.Data}
	return msg.Topic, env, msg.InstanceID == r.instanceID, nil
}
