package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/alienvault/internal/entity"
	voteRepo "anoa.com/alienvault/internal/modules/vote/repository"
	"anoa.com/alienvault/internal/realtime"
	"anoa.com/alienvault/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TargetResolver confirms a vote target exists and reports the discussion it
// belongs to, which is the room that hears about the new tally.
type TargetResolver interface {
	ResolveDiscussionID(ctx context.Context, target entity.VoteTarget) (uuid.UUID, error)
}

type VoteService interface {
	CastVote(ctx context.Context, voterID uuid.UUID, target entity.VoteTarget, direction entity.VoteDirection) (*voteRepo.CastResult, error)
}

type voteService struct {
	repo      voteRepo.VoteRepository
	targets   TargetResolver
	publisher realtime.Publisher
}

func NewVoteService(repo voteRepo.VoteRepository, targets TargetResolver, publisher realtime.Publisher) VoteService {
	return &voteService{
		repo:      repo,
		targets:   targets,
		publisher: publisher,
	}
}

func (s *voteService) CastVote(ctx context.Context, voterID uuid.UUID, target entity.VoteTarget, direction entity.VoteDirection) (*voteRepo.CastResult, error) {
	if !target.Kind.Valid() {
		return nil, fmt.Errorf("invalid vote target %q: %w", target.Kind, apperror.ErrBadRequest)
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("invalid vote type %q: %w", direction, apperror.ErrBadRequest)
	}

	discussionID, err := s.targets.ResolveDiscussionID(ctx, target)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("%s not found: %w", target.Kind, apperror.ErrNotFound)
		}
		return nil, err
	}

	result, err := s.repo.Cast(ctx, target, voterID, direction)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishVoteCountChanged(discussionID, target.ID, string(target.Kind), realtime.VoteCounts{
			Total: result.Tally.Total,
			Up:    result.Tally.Up,
			Down:  result.Tally.Down,
		})
	}

	return result, nil
}
