package realtime

import (
	"encoding/json"
	"net/http"

	"anoa.com/alienvault/pkg/logger"
	"anoa.com/alienvault/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// TypingPublisher forwards ephemeral typing indicators.
type TypingPublisher interface {
	PublishTyping(from *Client, discussionID uuid.UUID, kind string, started bool)
}

// Hub upgrades authenticated requests and dispatches client events.
type Hub struct {
	router   *Router
	auth     Authenticator
	typing   TypingPublisher
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

func NewHub(router *Router, auth Authenticator, typing TypingPublisher, allowedOrigins []string) *Hub {
	return &Hub{
		router: router,
		auth:   auth,
		typing: typing,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: logger.WithComponent("realtime.hub"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// ServeWS handles GET /api/ws. Authentication happens before the upgrade so a
// rejected caller gets a plain 401 and never joins a room.
func (h *Hub) ServeWS(c *gin.Context) {
	identity, err := h.auth.Authenticate(c.Request.Context(), CredentialFromRequest(c.Request))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := newClient(h, conn, *identity, sendBufferSize)
	h.router.Register(client)
	client.log.Info("client connected")

	go client.writePump()
	go client.readPump()
}

func (h *Hub) handleMessage(c *Client, msg Message) {
	switch msg.Event {
	case EventJoinDiscussion, EventLeaveDiscussion, EventTypingStart, EventTypingStop:
	default:
		c.sendError("unknown event: " + msg.Event)
		return
	}

	var ref TypingRef
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &ref); err != nil {
			c.sendError("invalid payload for " + msg.Event)
			return
		}
	}
	discussionID, err := uuid.Parse(ref.DiscussionID)
	if err != nil {
		c.sendError("invalid discussion_id")
		return
	}

	switch ref.Type {
	case "", TypingAnswer, TypingReply:
	default:
		c.sendError("invalid typing type: " + ref.Type)
		return
	}

	switch msg.Event {
	case EventJoinDiscussion:
		h.router.Join(c, DiscussionRoom(discussionID))
		c.sendEvent(EventJoined, ref.DiscussionRef)
	case EventLeaveDiscussion:
		h.router.Leave(c, DiscussionRoom(discussionID))
		c.sendEvent(EventLeft, ref.DiscussionRef)
	case EventTypingStart:
		h.typing.PublishTyping(c, discussionID, ref.Type, true)
	case EventTypingStop:
		h.typing.PublishTyping(c, discussionID, ref.Type, false)
	}
}
