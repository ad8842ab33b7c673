package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"anoa.com/alienvault/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultQueueSize = 1024

// Publisher fans committed writes out to connected clients. Every method is
// fire-and-forget: it never blocks on delivery and never reports failure.
type Publisher interface {
	PublishNewAnswer(discussionID uuid.UUID, answer any)
	PublishNewReply(discussionID, answerID uuid.UUID, reply any)
	PublishBestAnswerMarked(discussionID, answerID uuid.UUID)
	PublishVoteCountChanged(discussionID, targetID uuid.UUID, targetKind string, counts VoteCounts)
	PublishNotification(userID uuid.UUID, notification any)
}

// Envelope is one encoded event addressed to a room.
type Envelope struct {
	Room    string          `json:"room"`
	Except  string          `json:"except,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Transport moves an envelope to the clients of a room.
type Transport interface {
	Deliver(ctx context.Context, env Envelope) error
}

// LocalTransport delivers straight into an in-process router.
type LocalTransport struct {
	router *Router
}

func NewLocalTransport(router *Router) *LocalTransport {
	return &LocalTransport{router: router}
}

func (t *LocalTransport) Deliver(_ context.Context, env Envelope) error {
	t.router.Broadcast(env.Room, env.Payload, env.Except)
	return nil
}

// Broadcaster queues events and hands them to a Transport from a single
// worker, so events keep the order in which they were published.
type Broadcaster struct {
	transport Transport
	queue     chan Envelope
	done      chan struct{}
	log       *logrus.Entry

	mu     sync.RWMutex
	closed bool
}

func NewBroadcaster(transport Transport, queueSize int) *Broadcaster {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	b := &Broadcaster{
		transport: transport,
		queue:     make(chan Envelope, queueSize),
		done:      make(chan struct{}),
		log:       logger.WithComponent("realtime.broadcaster"),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	defer close(b.done)
	for env := range b.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := b.transport.Deliver(ctx, env); err != nil {
			b.log.WithError(err).WithField("room", env.Room).Error("failed to deliver event")
		}
		cancel()
	}
}

// Close stops accepting events, drains what is queued and waits for the worker.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	<-b.done
}

func (b *Broadcaster) publish(room, except, event string, data any) {
	payload, err := encode(event, data)
	if err != nil {
		b.log.WithError(err).WithField("event", event).Error("failed to encode event")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.queue <- Envelope{Room: room, Except: except, Payload: payload}:
	default:
		b.log.WithFields(logrus.Fields{"room": room, "event": event}).Warn("broadcast queue full, dropping event")
	}
}

func (b *Broadcaster) PublishNewAnswer(discussionID uuid.UUID, answer any) {
	b.publish(DiscussionRoom(discussionID), "", EventNewAnswer, answer)
}

func (b *Broadcaster) PublishNewReply(discussionID, answerID uuid.UUID, reply any) {
	b.publish(DiscussionRoom(discussionID), "", EventNewReply, NewReplyPayload{
		AnswerID: answerID,
		Reply:    reply,
	})
}

func (b *Broadcaster) PublishBestAnswerMarked(discussionID, answerID uuid.UUID) {
	b.publish(DiscussionRoom(discussionID), "", EventBestAnswerMarked, BestAnswerPayload{
		DiscussionID: discussionID,
		AnswerID:     answerID,
	})
}

func (b *Broadcaster) PublishVoteCountChanged(discussionID, targetID uuid.UUID, targetKind string, counts VoteCounts) {
	b.publish(DiscussionRoom(discussionID), "", EventVoteCountUpdated, VoteCountPayload{
		DiscussionID: discussionID,
		TargetID:     targetID,
		TargetKind:   targetKind,
		VoteCounts:   counts,
	})
}

func (b *Broadcaster) PublishNotification(userID uuid.UUID, notification any) {
	b.publish(UserRoom(userID), "", EventNewNotification, notification)
}

// PublishTyping forwards a typing indicator to the rest of the discussion room.
// kind says whether an answer or a reply is being written and may be empty.
func (b *Broadcaster) PublishTyping(from *Client, discussionID uuid.UUID, kind string, started bool) {
	event := EventUserStopTyping
	if started {
		event = EventUserTyping
	}
	b.publish(DiscussionRoom(discussionID), from.ID(), event, TypingPayload{
		DiscussionID: discussionID,
		UserID:       from.UserID(),
		Username:     from.Identity().Username,
		Type:         kind,
	})
}
