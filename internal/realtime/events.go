package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Server to client events.
const (
	EventNewAnswer        = "new_answer"
	EventNewReply         = "new_reply"
	EventBestAnswerMarked = "best_answer_marked"
	EventVoteCountUpdated = "vote_count_updated"
	EventNewNotification  = "new_notification"
	EventUserTyping       = "user_typing"
	EventUserStopTyping   = "user_stop_typing"
	EventJoined           = "joined_discussion"
	EventLeft             = "left_discussion"
	EventError            = "error"
)

// Client to server events.
const (
	EventJoinDiscussion  = "join_discussion"
	EventLeaveDiscussion = "leave_discussion"
	EventTypingStart     = "typing_start"
	EventTypingStop      = "typing_stop"
)

const (
	discussionRoomPrefix = "discussion:"
	userRoomPrefix       = "user:"
)

func DiscussionRoom(id uuid.UUID) string {
	return discussionRoomPrefix + id.String()
}

func UserRoom(id uuid.UUID) string {
	return userRoomPrefix + id.String()
}

// Message is the wire envelope in both directions.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Message{Event: event, Data: raw})
}

type DiscussionRef struct {
	DiscussionID string `json:"discussion_id"`
}

// What the typist is writing.
const (
	TypingAnswer = "answer"
	TypingReply  = "reply"
)

// TypingRef is the client payload of typing_start and typing_stop.
type TypingRef struct {
	DiscussionRef
	Type string `json:"type,omitempty"`
}

type NewReplyPayload struct {
	AnswerID uuid.UUID `json:"answer_id"`
	Reply    any       `json:"reply"`
}

type BestAnswerPayload struct {
	DiscussionID uuid.UUID `json:"discussion_id"`
	AnswerID     uuid.UUID `json:"answer_id"`
}

// VoteCounts is the tally shipped with vote_count_updated.
type VoteCounts struct {
	Total int64 `json:"vote_count"`
	Up    int64 `json:"upvotes"`
	Down  int64 `json:"downvotes"`
}

type VoteCountPayload struct {
	DiscussionID uuid.UUID `json:"discussion_id"`
	TargetID     uuid.UUID `json:"target_id"`
	TargetKind   string    `json:"target_kind"`
	VoteCounts
}

type TypingPayload struct {
	DiscussionID uuid.UUID `json:"discussion_id"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Type         string    `json:"type,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
