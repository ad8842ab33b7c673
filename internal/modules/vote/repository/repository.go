package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/alienvault/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
	ActionFlipped Action = "flipped"
)

var ErrVoteConflict = errors.New("vote conflict could not be resolved")

// Tally is the aggregate for one target. Total counts every vote in either
// direction, so a flip leaves it unchanged.
type Tally struct {
	Total int64
	Up    int64
	Down  int64
}

type CastResult struct {
	Action Action
	// UserVote is the voter's standing direction after the cast, nil when removed.
	UserVote *entity.VoteDirection
	Tally    Tally
}

func (r CastResult) Changed() bool {
	return r.Action != ""
}

type VoteRepository interface {
	// Cast applies toggle semantics for (target, voter) and returns the new tally.
	Cast(ctx context.Context, target entity.VoteTarget, voterID uuid.UUID, direction entity.VoteDirection) (*CastResult, error)
	Tally(ctx context.Context, target entity.VoteTarget) (Tally, error)
	Tallies(ctx context.Context, kind entity.TargetKind, ids []uuid.UUID) (map[uuid.UUID]Tally, error)
	UserVotes(ctx context.Context, kind entity.TargetKind, ids []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]entity.VoteDirection, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Cast runs read-then-write in one transaction with the existing row locked.
// The insert is ON CONFLICT DO NOTHING; if a concurrent insert won, the row is
// re-read and the toggle applied to it, so one (target, voter) never has two rows.
func (r *voteRepository) Cast(ctx context.Context, target entity.VoteTarget, voterID uuid.UUID, direction entity.VoteDirection) (*CastResult, error) {
	result := &CastResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		action, err := applyToggle(tx, target, voterID, direction)
		if err != nil {
			return err
		}
		result.Action = action
		if action != ActionRemoved {
			d := direction
			result.UserVote = &d
		}

		tallies, err := tallies(tx, target.Kind, []uuid.UUID{target.ID})
		if err != nil {
			return err
		}
		result.Tally = tallies[target.ID]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func applyToggle(tx *gorm.DB, target entity.VoteTarget, voterID uuid.UUID, direction entity.VoteDirection) (Action, error) {
	for attempt := 0; attempt < 2; attempt++ {
		var existing entity.Vote
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("target_kind = ? AND target_id = ? AND user_id = ?", target.Kind, target.ID, voterID).
			Limit(1).
			Find(&existing)
		if res.Error != nil {
			return "", fmt.Errorf("failed to read vote: %w", res.Error)
		}

		if res.RowsAffected > 0 {
			if existing.Direction == direction {
				if err := tx.Delete(&existing).Error; err != nil {
					return "", fmt.Errorf("failed to remove vote: %w", err)
				}
				return ActionRemoved, nil
			}
			if err := tx.Model(&existing).Update("direction", direction).Error; err != nil {
				return "", fmt.Errorf("failed to flip vote: %w", err)
			}
			return ActionFlipped, nil
		}

		vote := &entity.Vote{
			TargetKind: target.Kind,
			TargetID:   target.ID,
			UserID:     voterID,
			Direction:  direction,
		}
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(vote)
		if ins.Error != nil {
			return "", fmt.Errorf("failed to add vote: %w", ins.Error)
		}
		if ins.RowsAffected == 1 {
			return ActionAdded, nil
		}
	}
	return "", ErrVoteConflict
}

func (r *voteRepository) Tally(ctx context.Context, target entity.VoteTarget) (Tally, error) {
	all, err := tallies(r.db.WithContext(ctx), target.Kind, []uuid.UUID{target.ID})
	if err != nil {
		return Tally{}, err
	}
	return all[target.ID], nil
}

func (r *voteRepository) Tallies(ctx context.Context, kind entity.TargetKind, ids []uuid.UUID) (map[uuid.UUID]Tally, error) {
	return tallies(r.db.WithContext(ctx), kind, ids)
}

type tallyRow struct {
	TargetID uuid.UUID
	Up       int64
	Down     int64
}

func tallies(db *gorm.DB, kind entity.TargetKind, ids []uuid.UUID) (map[uuid.UUID]Tally, error) {
	out := make(map[uuid.UUID]Tally, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []tallyRow
	err := db.Model(&entity.Vote{}).
		Select(
			"target_id, SUM(CASE WHEN direction = ? THEN 1 ELSE 0 END) AS up, SUM(CASE WHEN direction = ? THEN 1 ELSE 0 END) AS down",
			entity.VoteUp, entity.VoteDown,
		).
		Where("target_kind = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}

	for _, row := range rows {
		out[row.TargetID] = Tally{Total: row.Up + row.Down, Up: row.Up, Down: row.Down}
	}
	return out, nil
}

func (r *voteRepository) UserVotes(ctx context.Context, kind entity.TargetKind, ids []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]entity.VoteDirection, error) {
	out := make(map[uuid.UUID]entity.VoteDirection)
	if len(ids) == 0 || userID == uuid.Nil {
		return out, nil
	}

	var votes []entity.Vote
	err := r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id IN ? AND user_id = ?", kind, ids, userID).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		out[v.TargetID] = v.Direction
	}
	return out, nil
}
