package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/discussion/dto"
	discussionRepo "anoa.com/alienvault/internal/modules/discussion/repository"
	notification "anoa.com/alienvault/internal/modules/notification/service"
	userRepo "anoa.com/alienvault/internal/modules/user/repository"
	voteRepo "anoa.com/alienvault/internal/modules/vote/repository"
	"anoa.com/alienvault/internal/realtime"
	"anoa.com/alienvault/pkg/apperror"
	commonDto "anoa.com/alienvault/pkg/dto"
	"anoa.com/alienvault/pkg/logger"
	"anoa.com/alienvault/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	search "anoa.com/alienvault/internal/modules/search/service"
	view "anoa.com/alienvault/internal/modules/view/service"
)

type DiscussionService interface {
	CreateDiscussion(ctx context.Context, userID uuid.UUID, req dto.CreateDiscussionRequest) (*entity.Discussion, error)
	GetDiscussions(ctx context.Context, viewerID uuid.UUID, filter dto.DiscussionFilter) (*dto.PaginatedDiscussionResponse, error)
	// GetDiscussion returns the discussion with its answers and replies and
	// records one view for viewerKey.
	GetDiscussion(ctx context.Context, id, viewerID uuid.UUID, viewerKey string) (*dto.DiscussionDetailResponse, error)
	AddAnswer(ctx context.Context, actorID, discussionID uuid.UUID, req dto.CreateAnswerRequest) (*entity.Answer, error)
	AddReply(ctx context.Context, actorID, answerID uuid.UUID, req dto.CreateReplyRequest) (*entity.Reply, error)
	MarkBestAnswer(ctx context.Context, actorID, answerID uuid.UUID) error
}

// Deps carries the collaborators of the discussion service. Search, Views,
// Publisher and Limiter may be nil.
type Deps struct {
	Discussions   discussionRepo.DiscussionRepository
	Users         userRepo.UserRepository
	Votes         voteRepo.VoteRepository
	Notifications notification.NotificationService
	Publisher     realtime.Publisher
	Limiter       *ratelimiter.Limiter
	Search        search.SearchService
	Views         view.ViewService
}

type discussionService struct {
	repo          discussionRepo.DiscussionRepository
	userRepo      userRepo.UserRepository
	voteRepo      voteRepo.VoteRepository
	notifications notification.NotificationService
	publisher     realtime.Publisher
	limiter       *ratelimiter.Limiter
	search        search.SearchService
	views         view.ViewService
	log           *logrus.Entry
}

func NewDiscussionService(deps Deps) DiscussionService {
	return &discussionService{
		repo:          deps.Discussions,
		userRepo:      deps.Users,
		voteRepo:      deps.Votes,
		notifications: deps.Notifications,
		publisher:     deps.Publisher,
		limiter:       deps.Limiter,
		search:        deps.Search,
		views:         deps.Views,
		log:           logger.WithComponent("discussion"),
	}
}

func (s *discussionService) CreateDiscussion(ctx context.Context, userID uuid.UUID, req dto.CreateDiscussionRequest) (*entity.Discussion, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	category := strings.TrimSpace(req.Category)
	if title == "" || content == "" || category == "" {
		return nil, fmt.Errorf("title, content, and category are required: %w", apperror.ErrBadRequest)
	}

	author, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}

	release, err := s.limiter.Acquire(ctx, userID, ratelimiter.ScopeDiscussion)
	if err != nil {
		return nil, err
	}

	discussion := &entity.Discussion{
		AuthorID: userID,
		Title:    title,
		Content:  content,
		Category: category,
		Tags:     normalizeTags(req.Tags),
		Images:   req.Images,
	}
	if err := s.repo.Create(ctx, discussion); err != nil {
		release()
		return nil, fmt.Errorf("failed to create discussion: %w", err)
	}
	discussion.Author = *author

	if s.search != nil {
		if err := s.search.IndexDiscussion(discussion); err != nil {
			s.log.WithError(err).WithField("discussion_id", discussion.ID).Warn("failed to index discussion")
		}
	}

	return discussion, nil
}

func (s *discussionService) GetDiscussions(ctx context.Context, viewerID uuid.UUID, filter dto.DiscussionFilter) (*dto.PaginatedDiscussionResponse, error) {
	page, limit := commonDto.NormalizePage(filter.Page, filter.Limit)
	offset := (page - 1) * limit

	discussions, total, err := s.listDiscussions(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	data, err := s.buildDiscussionResponses(ctx, discussions, viewerID)
	if err != nil {
		return nil, err
	}

	return &dto.PaginatedDiscussionResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

// listDiscussions prefers the search index for free-text queries and falls
// back to the database when the index is absent or failing.
func (s *discussionService) listDiscussions(ctx context.Context, filter dto.DiscussionFilter, offset, limit int) ([]entity.Discussion, int64, error) {
	query := strings.TrimSpace(filter.Search)
	if s.search != nil && query != "" {
		category := filter.Category
		if category == "all" {
			category = ""
		}
		ids, total, err := s.search.SearchDiscussions(query, category, offset, limit)
		if err == nil {
			discussions, err := s.repo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, 0, err
			}
			return orderByIDs(discussions, ids), total, nil
		}
		s.log.WithError(err).Warn("search index unavailable, falling back to database")
	}

	sort := filter.Sort
	if sort == "" {
		sort = dto.SortRecent
	}
	return s.repo.FindAll(ctx, discussionRepo.ListFilter{
		Category: filter.Category,
		Tag:      strings.TrimSpace(filter.Tag),
		Search:   query,
		Sort:     sort,
	}, offset, limit)
}

func (s *discussionService) GetDiscussion(ctx context.Context, id, viewerID uuid.UUID, viewerKey string) (*dto.DiscussionDetailResponse, error) {
	discussion, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("discussion not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if s.views != nil && viewerKey != "" {
		if err := s.views.RecordView(ctx, id, viewerKey); err != nil {
			s.log.WithError(err).WithField("discussion_id", id).Warn("failed to record view")
		}
	}

	return s.buildDetail(ctx, discussion, viewerID)
}

// actor loads the acting user. A token for a deleted account is treated as unauthenticated.
func (s *discussionService) actor(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func orderByIDs(discussions []entity.Discussion, ids []uuid.UUID) []entity.Discussion {
	byID := make(map[uuid.UUID]entity.Discussion, len(discussions))
	for _, d := range discussions {
		byID[d.ID] = d
	}

	ordered := make([]entity.Discussion, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}
	return ordered
}
