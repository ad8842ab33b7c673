package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationNewAnswer  NotificationType = "new_answer"
	NotificationReply      NotificationType = "reply"
	NotificationMention    NotificationType = "mention"
	NotificationBestAnswer NotificationType = "best_answer"
)

type Notification struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_user,priority:1" json:"user_id"`
	User         User             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Type         NotificationType `gorm:"size:20;not null" json:"type"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	Message      string           `gorm:"type:text;not null" json:"message"`
	RelatedID    uuid.UUID        `gorm:"type:uuid" json:"related_id"`
	RelatedKind  string           `gorm:"size:20" json:"related_kind"`
	FromUserID   *uuid.UUID       `gorm:"type:uuid" json:"from_user_id,omitempty"`
	FromUsername string           `gorm:"size:50" json:"from_username,omitempty"`
	IsRead       bool             `gorm:"default:false;index:idx_notifications_user,priority:2" json:"is_read"`
	CreatedAt    time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
