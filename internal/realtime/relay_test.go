package realtime

import (
	"encoding/json"
	"testing"

	"anoa.com/alienvault/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayEnvelopeRoutesToRoomExceptSender(t *testing.T) {
	r := NewRouter()
	room := DiscussionRoom(uuid.New())
	sender, listener := testClient(4), testClient(4)
	r.Join(sender, room)
	r.Join(listener, room)

	payload, err := encode(EventUserTyping, TypingPayload{DiscussionID: uuid.New(), Username: "tester"})
	require.NoError(t, err)
	raw, err := json.Marshal(Envelope{Room: room, Except: sender.ID(), Payload: payload})
	require.NoError(t, err)

	relayEnvelope(r, logger.WithComponent("test"), raw)

	assert.Len(t, drain(listener), 1)
	assert.Empty(t, drain(sender))
}

func TestRelayEnvelopeDropsMalformedInput(t *testing.T) {
	r := NewRouter()
	c := testClient(4)
	r.Register(c)

	relayEnvelope(r, logger.WithComponent("test"), []byte("{not json"))

	assert.Empty(t, drain(c))
}
