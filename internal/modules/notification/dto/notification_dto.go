package dto

import (
	"anoa.com/alienvault/internal/entity"
	commonDto "anoa.com/alienvault/pkg/dto"
	"github.com/google/uuid"
)

type NotificationFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type PaginatedNotificationResponse struct {
	Data        []entity.Notification    `json:"data"`
	UnreadCount int64                    `json:"unread_count"`
	Meta        commonDto.PaginationMeta `json:"meta"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// NotifyInput describes one notification to record and push.
type NotifyInput struct {
	RecipientID  uuid.UUID
	Type         entity.NotificationType
	Title        string
	Message      string
	RelatedID    uuid.UUID
	RelatedKind  string
	FromUserID   *uuid.UUID
	FromUsername string
}
