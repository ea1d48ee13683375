package chathub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modhub/backend/internal/models"
)

func TestRedisRelay_EncodeDecode(t *testing.T) {
	sender := &RedisRelay{instanceID: "instance-a"}
	receiver := &RedisRelay{instanceID: "instance-b"}

	payload, err := sender.encode(models.TopicAdmin, models.Envelope{
		Type: models.EventUserReported,
		Data: models.IDPayload{ID: 3},
	})
	require.NoError(t, err)

	topic, env, own, err := receiver.decode(payload)
	require.NoError(t, err)
	assert.False(t, own)
	assert.Equal(t, models.TopicAdmin, topic)
	assert.Equal(t, models.EventUserReported, env.Type)

	// Дані пересилаються без змін, тож клієнт отримає той самий JSON.
	frame, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"user_reported","data":{"id":3}}`, string(frame))
}

func TestRedisRelay_DecodeMarksOwnMessages(t *testing.T) {
	relay := &RedisRelay{instanceID: "instance-a"}

	payload, err := relay.encode(models.TopicPublic, models.Envelope{Type: models.EventAnnouncement, Data: models.IDPayload{ID: 1}})
	require.NoError(t, err)

	_, _, own, err := relay.decode(payload)
	require.NoError(t, err)
	assert.True(t, own)
}

func TestRedisRelay_DecodeRejectsMalformed(t *testing.T) {
	relay := &RedisRelay{instanceID: "instance-a"}

	for _, payload := range []string{
		`not json`,
		`{"instanceId":"x","type":"chat","data":{}}`,
		`{"instanceId":"x","topic":"public","data":{}}`,
	} {
		_, _, _, err := relay.decode([]byte(payload))
		assert.Error(t, err, payload)
	}
}

func TestNewRedisRelay_AssignsInstanceID(t *testing.T) {
	a := NewRedisRelay(nil, "modhub:events")
	b := NewRedisRelay(nil, "modhub:events")

	assert.NotEmpty(t, a.InstanceID())
	assert.NotEqual(t, a.InstanceID(), b.InstanceID())
}
