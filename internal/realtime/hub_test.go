package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anoa.com/alienvault/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuthenticator map[string]Identity

func (a staticAuthenticator) Authenticate(_ context.Context, credential string) (*Identity, error) {
	id, ok := a[credential]
	if !ok {
		return nil, fmt.Errorf("bad token: %w", apperror.ErrUnauthorized)
	}
	return &id, nil
}

type typingCall struct {
	from         *Client
	discussionID uuid.UUID
	kind         string
	started      bool
}

type fakeTyping struct {
	calls []typingCall
}

func (f *fakeTyping) PublishTyping(from *Client, discussionID uuid.UUID, kind string, started bool) {
	f.calls = append(f.calls, typingCall{from, discussionID, kind, started})
}

func TestHubHandleMessageJoinAndLeave(t *testing.T) {
	router := NewRouter()
	hub := NewHub(router, staticAuthenticator{}, &fakeTyping{}, nil)
	c := newClient(hub, nil, Identity{UserID: uuid.New()}, 8)
	router.Register(c)
	discussionID := uuid.New()
	data := []byte(fmt.Sprintf(`{"discussion_id":%q}`, discussionID))

	hub.handleMessage(c, Message{Event: EventJoinDiscussion, Data: data})
	hub.handleMessage(c, Message{Event: EventJoinDiscussion, Data: data})
	assert.Equal(t, 1, router.RoomSize(DiscussionRoom(discussionID)))

	hub.handleMessage(c, Message{Event: EventLeaveDiscussion, Data: data})
	assert.Equal(t, 0, router.RoomSize(DiscussionRoom(discussionID)))

	msgs := drain(c)
	require.Len(t, msgs, 3)
	event, _ := decode(t, msgs[0])
	assert.Equal(t, EventJoined, event)
	event, _ = decode(t, msgs[2])
	assert.Equal(t, EventLeft, event)
}

func TestHubHandleMessageRejectsUnknownAndMalformed(t *testing.T) {
	router := NewRouter()
	typing := &fakeTyping{}
	hub := NewHub(router, staticAuthenticator{}, typing, nil)
	c := newClient(hub, nil, Identity{UserID: uuid.New()}, 8)

	hub.handleMessage(c, Message{Event: "shout"})
	hub.handleMessage(c, Message{Event: EventJoinDiscussion, Data: []byte(`{"discussion_id":"42"}`)})
	hub.handleMessage(c, Message{Event: EventTypingStart, Data: []byte(`[1,2]`)})
	hub.handleMessage(c, Message{Event: EventTypingStart, Data: []byte(fmt.Sprintf(`{"discussion_id":%q,"type":"poem"}`, uuid.New()))})

	msgs := drain(c)
	require.Len(t, msgs, 4)
	for _, raw := range msgs {
		event, data := decode(t, raw)
		assert.Equal(t, EventError, event)
		assert.NotEmpty(t, data["message"])
	}
	assert.Empty(t, typing.calls)
	assert.Empty(t, router.ClientRooms(c))
}

func TestHubHandleMessageTyping(t *testing.T) {
	typing := &fakeTyping{}
	hub := NewHub(NewRouter(), staticAuthenticator{}, typing, nil)
	c := newClient(hub, nil, Identity{UserID: uuid.New()}, 8)
	discussionID := uuid.New()
	start := []byte(fmt.Sprintf(`{"discussion_id":%q,"type":"reply"}`, discussionID))
	stop := []byte(fmt.Sprintf(`{"discussion_id":%q}`, discussionID))

	hub.handleMessage(c, Message{Event: EventTypingStart, Data: start})
	hub.handleMessage(c, Message{Event: EventTypingStop, Data: stop})

	require.Len(t, typing.calls, 2)
	assert.True(t, typing.calls[0].started)
	assert.Equal(t, TypingReply, typing.calls[0].kind)
	assert.False(t, typing.calls[1].started)
	assert.Empty(t, typing.calls[1].kind)
	assert.Equal(t, discussionID, typing.calls[0].discussionID)
	assert.Same(t, c, typing.calls[0].from)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://alienvault.io"})

	req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://alienvault.io")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}

func newTestServer(t *testing.T, auth Authenticator) (*httptest.Server, *Router, *Broadcaster) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := NewRouter()
	broadcaster := NewBroadcaster(NewLocalTransport(router), 64)
	hub := NewHub(router, auth, broadcaster, nil)

	engine := gin.New()
	engine.GET("/api/ws", hub.ServeWS)
	srv := httptest.NewServer(engine)

	t.Cleanup(func() {
		srv.Close()
		broadcaster.Close()
		router.Close()
	})
	return srv, router, broadcaster
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws" + query
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	return decode(t, raw)
}

func TestServeWSRejectsMissingOrInvalidCredential(t *testing.T) {
	srv, router, _ := newTestServer(t, staticAuthenticator{})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "?token=nope"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	router.mu.RLock()
	defer router.mu.RUnlock()
	assert.Empty(t, router.members)
}

func TestServeWSRoomFlow(t *testing.T) {
	alice := Identity{UserID: uuid.New(), Username: "alice"}
	bob := Identity{UserID: uuid.New(), Username: "bob"}
	srv, router, broadcaster := newTestServer(t, staticAuthenticator{"alice-token": alice, "bob-token": bob})

	aliceConn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token=alice-token"), nil)
	require.NoError(t, err)
	defer aliceConn.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer bob-token")
	bobConn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), header)
	require.NoError(t, err)
	defer bobConn.Close()

	discussionID := uuid.New()
	join := map[string]any{"event": EventJoinDiscussion, "data": map[string]string{"discussion_id": discussionID.String()}}
	require.NoError(t, aliceConn.WriteJSON(join))
	require.NoError(t, bobConn.WriteJSON(join))

	event, _ := readEvent(t, aliceConn)
	assert.Equal(t, EventJoined, event)
	event, _ = readEvent(t, bobConn)
	assert.Equal(t, EventJoined, event)
	assert.Equal(t, 2, router.RoomSize(DiscussionRoom(discussionID)))

	require.NoError(t, aliceConn.WriteJSON(map[string]any{
		"event": EventTypingStart,
		"data":  map[string]string{"discussion_id": discussionID.String(), "type": TypingAnswer},
	}))
	event, data := readEvent(t, bobConn)
	assert.Equal(t, EventUserTyping, event)
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, TypingAnswer, data["type"])

	broadcaster.PublishNotification(bob.UserID, map[string]string{"type": "mention"})
	event, data = readEvent(t, bobConn)
	assert.Equal(t, EventNewNotification, event)
	assert.Equal(t, "mention", data["type"])

	require.NoError(t, aliceConn.WriteJSON(map[string]any{"event": "dance"}))
	event, _ = readEvent(t, aliceConn)
	assert.Equal(t, EventError, event)

	aliceConn.Close()
	assert.Eventually(t, func() bool {
		return router.RoomSize(DiscussionRoom(discussionID)) == 1 && router.RoomSize(UserRoom(alice.UserID)) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
