package repository

import (
	"context"
	"strings"

	"anoa.com/alienvault/internal/entity"
	"github.com/google/uuid"
)

const (
	orderByVotes    = `(SELECT COUNT(*) FROM votes WHERE votes.target_kind = 'discussion' AND votes.target_id = discussions.id) DESC`
	answerCountExpr = `(SELECT COUNT(*) FROM answers WHERE answers.discussion_id = discussions.id)`
)

func (r *discussionRepository) FindAll(ctx context.Context, filter ListFilter, offset, limit int) ([]entity.Discussion, int64, error) {
	var discussions []entity.Discussion
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Discussion{})

	if filter.Category != "" && filter.Category != "all" {
		query = query.Where("discussions.category = ?", filter.Category)
	}

	if filter.Tag != "" {
		// Tags are a JSON array; match the quoted element.
		query = query.Where("CAST(discussions.tags AS TEXT) LIKE ?", `%"`+filter.Tag+`"%`)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(discussions.title) LIKE ? OR LOWER(discussions.content) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case "popular":
		query = query.Order(orderByVotes)
	case "answered":
		query = query.Order(answerCountExpr + " DESC")
	case "unanswered":
		query = query.Order(answerCountExpr + " ASC")
	}
	query = query.Order("discussions.created_at DESC").Order("discussions.id DESC")

	if err := query.
		Preload("Author").
		Offset(offset).
		Limit(limit).
		Find(&discussions).Error; err != nil {
		return nil, 0, err
	}

	return discussions, total, nil
}

type answerStatRow struct {
	DiscussionID uuid.UUID
	AnswerCount  int64
	BestCount    int64
}

func (r *discussionRepository) AnswerStats(ctx context.Context, discussionIDs []uuid.UUID) (map[uuid.UUID]AnswerStat, error) {
	out := make(map[uuid.UUID]AnswerStat, len(discussionIDs))
	if len(discussionIDs) == 0 {
		return out, nil
	}

	var rows []answerStatRow
	err := r.db.WithContext(ctx).
		Model(&entity.Answer{}).
		Select("discussion_id, COUNT(*) AS answer_count, SUM(CASE WHEN is_best_answer = ? THEN 1 ELSE 0 END) AS best_count", true).
		Where("discussion_id IN ?", discussionIDs).
		Group("discussion_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.DiscussionID] = AnswerStat{Count: row.AnswerCount, HasBest: row.BestCount > 0}
	}
	return out, nil
}
