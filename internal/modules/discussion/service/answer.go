package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/discussion/dto"
	notifDto "anoa.com/alienvault/internal/modules/notification/dto"
	"anoa.com/alienvault/pkg/apperror"
	"anoa.com/alienvault/pkg/mention"
	"anoa.com/alienvault/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func (s *discussionService) AddAnswer(ctx context.Context, actorID, discussionID uuid.UUID, req dto.CreateAnswerRequest) (*entity.Answer, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("content is required: %w", apperror.ErrBadRequest)
	}

	discussion, err := s.repo.FindByID(ctx, discussionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("discussion not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	release, err := s.limiter.Acquire(ctx, actorID, ratelimiter.ScopeAnswer)
	if err != nil {
		return nil, err
	}

	answer := &entity.Answer{
		DiscussionID: discussion.ID,
		AuthorID:     actor.ID,
		Content:      content,
		Images:       req.Images,
	}
	if err := s.repo.CreateAnswer(ctx, answer); err != nil {
		release()
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}
	answer.Author = *actor

	if discussion.AuthorID != actor.ID {
		s.notify(ctx, actor, notifDto.NotifyInput{
			RecipientID: discussion.AuthorID,
			Type:        entity.NotificationNewAnswer,
			Title:       "New Answer",
			Message:     fmt.Sprintf("%s answered your discussion \"%s\"", actor.Username, discussion.Title),
			RelatedID:   discussion.ID,
			RelatedKind: string(entity.TargetDiscussion),
		})
	}
	s.notifyMentions(ctx, actor, content, answer.ID, entity.TargetAnswer, "an answer")

	if s.publisher != nil {
		s.publisher.PublishNewAnswer(discussion.ID, buildAnswerResponse(*answer, nil, nil))
	}

	return answer, nil
}

func (s *discussionService) AddReply(ctx context.Context, actorID, answerID uuid.UUID, req dto.CreateReplyRequest) (*entity.Reply, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("content is required: %w", apperror.ErrBadRequest)
	}

	answer, err := s.repo.FindAnswerByID(ctx, answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	release, err := s.limiter.Acquire(ctx, actorID, ratelimiter.ScopeReply)
	if err != nil {
		return nil, err
	}

	reply := &entity.Reply{
		AnswerID: answer.ID,
		AuthorID: actor.ID,
		Content:  content,
		Images:   req.Images,
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		release()
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}
	reply.Author = *actor

	if answer.AuthorID != actor.ID {
		s.notify(ctx, actor, notifDto.NotifyInput{
			RecipientID: answer.AuthorID,
			Type:        entity.NotificationReply,
			Title:       "New Reply",
			Message:     fmt.Sprintf("%s replied to your answer", actor.Username),
			RelatedID:   reply.ID,
			RelatedKind: string(entity.TargetReply),
		})
	}
	s.notifyMentions(ctx, actor, content, reply.ID, entity.TargetReply, "a reply")

	if s.publisher != nil {
		s.publisher.PublishNewReply(answer.DiscussionID, answer.ID, buildReplyResponse(*reply, nil, nil))
	}

	return reply, nil
}

// MarkBestAnswer is reserved for the discussion's author. Re-marking the
// current best answer changes nothing and raises nothing.
func (s *discussionService) MarkBestAnswer(ctx context.Context, actorID, answerID uuid.UUID) error {
	answer, err := s.repo.FindAnswerByID(ctx, answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("answer not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	discussion := answer.Discussion
	if discussion == nil {
		discussion, err = s.repo.FindByID(ctx, answer.DiscussionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("discussion not found: %w", apperror.ErrNotFound)
			}
			return err
		}
	}

	if discussion.AuthorID != actorID {
		return fmt.Errorf("only the discussion author can mark the best answer: %w", apperror.ErrForbidden)
	}
	if answer.IsBestAnswer {
		return nil
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	if err := s.repo.MarkBestAnswer(ctx, discussion.ID, answer.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("answer not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if s.publisher != nil {
		s.publisher.PublishBestAnswerMarked(discussion.ID, answer.ID)
	}

	if answer.AuthorID != actor.ID {
		s.notify(ctx, actor, notifDto.NotifyInput{
			RecipientID: answer.AuthorID,
			Type:        entity.NotificationBestAnswer,
			Title:       "Best Answer",
			Message:     fmt.Sprintf("%s marked your answer as the best answer in \"%s\"", actor.Username, discussion.Title),
			RelatedID:   answer.ID,
			RelatedKind: string(entity.TargetAnswer),
		})
	}

	return nil
}

// notifyMentions raises one mention notification per existing mentioned user.
// Unknown usernames and self-mentions are skipped.
func (s *discussionService) notifyMentions(ctx context.Context, actor *entity.User, content string, relatedID uuid.UUID, kind entity.TargetKind, where string) {
	names := mention.Extract(content)
	if len(names) == 0 {
		return
	}

	users, err := s.userRepo.FindByUsernames(ctx, names)
	if err != nil {
		s.log.WithError(err).Warn("failed to resolve mentions")
		return
	}

	for _, user := range users {
		if user.ID == actor.ID {
			continue
		}
		s.notify(ctx, actor, notifDto.NotifyInput{
			RecipientID: user.ID,
			Type:        entity.NotificationMention,
			Title:       "You were mentioned",
			Message:     fmt.Sprintf("%s mentioned you in %s", actor.Username, where),
			RelatedID:   relatedID,
			RelatedKind: string(kind),
		})
	}
}

// notify records a side-effect notification. The triggering write is already
// committed, so a failure here is logged rather than returned.
func (s *discussionService) notify(ctx context.Context, actor *entity.User, input notifDto.NotifyInput) {
	if s.notifications == nil {
		return
	}
	actorID := actor.ID
	input.FromUserID = &actorID
	input.FromUsername = actor.Username

	if _, err := s.notifications.Notify(ctx, input); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"recipient_id": input.RecipientID,
			"type":         input.Type,
		}).Warn("failed to create notification")
	}
}
