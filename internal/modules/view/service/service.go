package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anoa.com/alienvault/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	pendingKey     = "pending:discussion_views"
	viewerDedupTTL = time.Hour
)

// ViewStore persists accumulated view counts.
type ViewStore interface {
	AddViews(ctx context.Context, discussionID uuid.UUID, delta int) error
}

type ViewService interface {
	// RecordView counts one view per viewer per hour. viewer is a user id or,
	// for anonymous readers, the client address.
	RecordView(ctx context.Context, discussionID uuid.UUID, viewer string) error
	// SyncViews flushes buffered counts to the store and reports how many
	// discussions were updated.
	SyncViews(ctx context.Context) (int, error)
}

type viewService struct {
	redisClient *redis.Client
	store       ViewStore
	log         *logrus.Entry
}

func NewViewService(redisClient *redis.Client, store ViewStore) ViewService {
	return &viewService{
		redisClient: redisClient,
		store:       store,
		log:         logger.WithComponent("views"),
	}
}

func viewKey(discussionID uuid.UUID) string {
	return fmt.Sprintf("discussion:views:%s", discussionID)
}

func viewerKey(discussionID uuid.UUID, viewer string) string {
	return fmt.Sprintf("discussion:viewer:%s:%s", discussionID, viewer)
}

func (s *viewService) RecordView(ctx context.Context, discussionID uuid.UUID, viewer string) error {
	if s.redisClient == nil {
		return s.store.AddViews(ctx, discussionID, 1)
	}

	if viewer != "" {
		fresh, err := s.redisClient.SetNX(ctx, viewerKey(discussionID, viewer), "viewed", viewerDedupTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to check viewer: %w", err)
		}
		if !fresh {
			return nil
		}
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Incr(ctx, viewKey(discussionID))
	pipe.SAdd(ctx, pendingKey, discussionID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment view: %w", err)
	}
	return nil
}

func (s *viewService) SyncViews(ctx context.Context) (int, error) {
	if s.redisClient == nil {
		return 0, nil
	}

	ids, err := s.redisClient.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read pending views: %w", err)
	}

	synced := 0
	for _, raw := range ids {
		discussionID, err := uuid.Parse(raw)
		if err != nil {
			s.redisClient.SRem(ctx, pendingKey, raw)
			continue
		}

		s.redisClient.SRem(ctx, pendingKey, raw)
		countStr, err := s.redisClient.GetDel(ctx, viewKey(discussionID)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			s.log.WithError(err).WithField("discussion_id", discussionID).Warn("failed to read view count")
			continue
		}

		count, err := strconv.Atoi(countStr)
		if err != nil || count <= 0 {
			continue
		}

		if err := s.store.AddViews(ctx, discussionID, count); err != nil {
			// put the views back so the next run retries them
			s.redisClient.IncrBy(ctx, viewKey(discussionID), int64(count))
			s.redisClient.SAdd(ctx, pendingKey, raw)
			s.log.WithError(err).WithField("discussion_id", discussionID).Warn("failed to persist views")
			continue
		}
		synced++
	}

	if synced > 0 {
		s.log.WithField("discussions", synced).Info("synced discussion views")
	}
	return synced, nil
}

// SyncJob flushes buffered views on a schedule.
type SyncJob struct {
	service  ViewService
	schedule string
}

func NewSyncJob(service ViewService, schedule string) *SyncJob {
	return &SyncJob{service: service, schedule: schedule}
}

func (j *SyncJob) Name() string {
	return "view-sync"
}

func (j *SyncJob) Schedule() string {
	return j.schedule
}

func (j *SyncJob) Run(ctx context.Context) error {
	_, err := j.service.SyncViews(ctx)
	return err
}
