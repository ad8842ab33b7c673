package repository

import (
	"context"
	"fmt"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter narrows a discussion listing. Empty fields do not filter.
type ListFilter struct {
	Category string
	Tag      string
	Search   string
	Sort     string
}

// AnswerStat summarizes the answers under one discussion.
type AnswerStat struct {
	Count   int64
	HasBest bool
}

type DiscussionRepository interface {
	Create(ctx context.Context, discussion *entity.Discussion) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Discussion, error)
	// FindDetail loads answers best first then oldest first, each with replies oldest first.
	FindDetail(ctx context.Context, id uuid.UUID) (*entity.Discussion, error)
	FindAll(ctx context.Context, filter ListFilter, offset, limit int) ([]entity.Discussion, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Discussion, error)
	AnswerStats(ctx context.Context, discussionIDs []uuid.UUID) (map[uuid.UUID]AnswerStat, error)
	AddViews(ctx context.Context, id uuid.UUID, delta int) error

	CreateAnswer(ctx context.Context, answer *entity.Answer) error
	FindAnswerByID(ctx context.Context, id uuid.UUID) (*entity.Answer, error)
	// MarkBestAnswer clears every best flag in the discussion and sets the given
	// answer's flag inside one transaction.
	MarkBestAnswer(ctx context.Context, discussionID, answerID uuid.UUID) error

	CreateReply(ctx context.Context, reply *entity.Reply) error
	FindReplyByID(ctx context.Context, id uuid.UUID) (*entity.Reply, error)

	ResolveDiscussionID(ctx context.Context, target entity.VoteTarget) (uuid.UUID, error)
}

type discussionRepository struct {
	db *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

func (r *discussionRepository) Create(ctx context.Context, discussion *entity.Discussion) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(discussion).Error
}

func (r *discussionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Discussion, error) {
	var discussion entity.Discussion
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&discussion).Error; err != nil {
		return nil, err
	}
	return &discussion, nil
}

func (r *discussionRepository) FindDetail(ctx context.Context, id uuid.UUID) (*entity.Discussion, error) {
	var discussion entity.Discussion
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_best_answer DESC, created_at ASC, id ASC")
		}).
		Preload("Answers.Author").
		Preload("Answers.Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Answers.Replies.Author").
		Where("id = ?", id).
		First(&discussion).Error; err != nil {
		return nil, err
	}
	return &discussion, nil
}

func (r *discussionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Discussion, error) {
	var discussions []entity.Discussion
	if len(ids) == 0 {
		return discussions, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id IN ?", ids).
		Find(&discussions).Error; err != nil {
		return nil, err
	}
	return discussions, nil
}

func (r *discussionRepository) AddViews(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&entity.Discussion{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", delta)).Error
}

func (r *discussionRepository) CreateAnswer(ctx context.Context, answer *entity.Answer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(answer).Error
}

func (r *discussionRepository) FindAnswerByID(ctx context.Context, id uuid.UUID) (*entity.Answer, error) {
	var answer entity.Answer
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Discussion").
		Where("id = ?", id).
		First(&answer).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *discussionRepository) MarkBestAnswer(ctx context.Context, discussionID, answerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes concurrent markings on the same discussion.
		var discussion entity.Discussion
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", discussionID).
			First(&discussion).Error; err != nil {
			return err
		}

		if err := tx.Model(&entity.Answer{}).
			Where("discussion_id = ? AND is_best_answer = ?", discussionID, true).
			Update("is_best_answer", false).Error; err != nil {
			return fmt.Errorf("failed to clear best answer: %w", err)
		}

		res := tx.Model(&entity.Answer{}).
			Where("id = ? AND discussion_id = ?", answerID, discussionID).
			Update("is_best_answer", true)
		if res.Error != nil {
			return fmt.Errorf("failed to set best answer: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *discussionRepository) CreateReply(ctx context.Context, reply *entity.Reply) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(reply).Error
}

func (r *discussionRepository) FindReplyByID(ctx context.Context, id uuid.UUID) (*entity.Reply, error) {
	var reply entity.Reply
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *discussionRepository) ResolveDiscussionID(ctx context.Context, target entity.VoteTarget) (uuid.UUID, error) {
	db := r.db.WithContext(ctx)
	var ids []uuid.UUID

	switch target.Kind {
	case entity.TargetDiscussion:
		if err := db.Model(&entity.Discussion{}).Where("id = ?", target.ID).Pluck("id", &ids).Error; err != nil {
			return uuid.Nil, err
		}
	case entity.TargetAnswer:
		if err := db.Model(&entity.Answer{}).Where("id = ?", target.ID).Pluck("discussion_id", &ids).Error; err != nil {
			return uuid.Nil, err
		}
	case entity.TargetReply:
		if err := db.Table("replies").
			Joins("JOIN answers ON answers.id = replies.answer_id").
			Where("replies.id = ?", target.ID).
			Pluck("answers.discussion_id", &ids).Error; err != nil {
			return uuid.Nil, err
		}
	default:
		return uuid.Nil, fmt.Errorf("unknown target kind %q: %w", target.Kind, apperror.ErrBadRequest)
	}

	if len(ids) == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return ids[0], nil
}
