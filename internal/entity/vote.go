package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TargetKind string

const (
	TargetDiscussion TargetKind = "discussion"
	TargetAnswer     TargetKind = "answer"
	TargetReply      TargetKind = "reply"
)

func (k TargetKind) Valid() bool {
	switch k {
	case TargetDiscussion, TargetAnswer, TargetReply:
		return true
	}
	return false
}

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Vote is one voter's standing opinion on one target. The unique index keeps
// at most one row per (target, voter).
type Vote struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	TargetKind TargetKind    `gorm:"size:20;not null;uniqueIndex:idx_votes_target_user,priority:1;index:idx_votes_target,priority:1" json:"target_kind"`
	TargetID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_votes_target_user,priority:2;index:idx_votes_target,priority:2" json:"target_id"`
	UserID     uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_votes_target_user,priority:3" json:"user_id"`
	User       User          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Direction  VoteDirection `gorm:"size:10;not null" json:"direction"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *Vote) TableName() string {
	return "votes"
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}

// VoteTarget names the thing being voted on.
type VoteTarget struct {
	Kind TargetKind
	ID   uuid.UUID
}
