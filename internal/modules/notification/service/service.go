package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/notification/dto"
	notifRepo "anoa.com/alienvault/internal/modules/notification/repository"
	"anoa.com/alienvault/internal/realtime"
	"anoa.com/alienvault/pkg/apperror"
	commonDto "anoa.com/alienvault/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService interface {
	Notify(ctx context.Context, input dto.NotifyInput) (*entity.Notification, error)
	GetNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.PaginatedNotificationResponse, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo      notifRepo.NotificationRepository
	publisher realtime.Publisher
}

func NewNotificationService(repo notifRepo.NotificationRepository, publisher realtime.Publisher) NotificationService {
	return &notificationService{
		repo:      repo,
		publisher: publisher,
	}
}

// Notify stores the notification first and only then pushes it to the
// recipient's personal room. A recipient that is offline finds it on the next listing.
func (s *notificationService) Notify(ctx context.Context, input dto.NotifyInput) (*entity.Notification, error) {
	if input.RecipientID == uuid.Nil {
		return nil, fmt.Errorf("recipient is required: %w", apperror.ErrBadRequest)
	}

	notification := &entity.Notification{
		UserID:       input.RecipientID,
		Type:         input.Type,
		Title:        input.Title,
		Message:      input.Message,
		RelatedID:    input.RelatedID,
		RelatedKind:  input.RelatedKind,
		FromUserID:   input.FromUserID,
		FromUsername: input.FromUsername,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishNotification(notification.UserID, notification)
	}

	return notification, nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.PaginatedNotificationResponse, error) {
	page, limit = commonDto.NormalizePage(page, limit)
	offset := (page - 1) * limit

	notifications, total, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []entity.Notification{}
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.PaginatedNotificationResponse{
		Data:        notifications,
		UnreadCount: unread,
		Meta:        commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if notification.UserID != userID {
		return fmt.Errorf("notification belongs to another user: %w", apperror.ErrForbidden)
	}
	if notification.IsRead {
		return nil
	}

	return s.repo.MarkAsRead(ctx, id)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}
