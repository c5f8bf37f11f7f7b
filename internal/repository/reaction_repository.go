package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunflower-post/backend/internal/model"
)

type ReactionRepository interface {
	// Toggle removes the reaction if the user already gave it, otherwise adds it.
	// active reports whether the reaction exists afterwards.
	Toggle(ctx context.Context, targetType, targetID, userID, kind string) (active bool, err error)
	// Counts returns target id -> kind -> count.
	Counts(ctx context.Context, targetType string, targetIDs []string) (map[string]map[string]int64, error)
	// Mine returns target id -> kinds the user gave.
	Mine(ctx context.Context, targetType string, targetIDs []string, userID string) (map[string][]string, error)
}

type reactionRepository struct{ db *gorm.DB }

func NewReactionRepository(db *gorm.DB) ReactionRepository { return &reactionRepository{db: db} }

func (r *reactionRepository) Toggle(ctx context.Context, targetType, targetID, userID, kind string) (bool, error) {
	active := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Reaction
		err := tx.Where("target_type = ? AND target_id = ? AND user_id = ? AND kind = ?",
			targetType, targetID, userID, kind).First(&existing).Error
		switch {
		case err == nil:
			return tx.Where("id = ?", existing.ID).Delete(&model.Reaction{}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			active = true
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Reaction{
				ID:         uuid.New().String(),
				TargetType: targetType,
				TargetID:   targetID,
				UserID:     userID,
				Kind:       kind,
				CreatedAt:  time.Now(),
			}).Error
		default:
			return err
		}
	})
	return active, err
}

type reactionCountRow struct {
	TargetID string
	Kind     string
	N        int64
}

func (r *reactionRepository) Counts(ctx context.Context, targetType string, targetIDs []string) (map[string]map[string]int64, error) {
	out := make(map[string]map[string]int64, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	var rows []reactionCountRow
	err := r.db.WithContext(ctx).Model(&model.Reaction{}).
		Select("target_id, kind, COUNT(*) AS n").
		Where("target_type = ? AND target_id IN ?", targetType, targetIDs).
		Group("target_id, kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if out[row.TargetID] == nil {
			out[row.TargetID] = make(map[string]int64)
		}
		out[row.TargetID][row.Kind] = row.N
	}
	return out, nil
}

func (r *reactionRepository) Mine(ctx context.Context, targetType string, targetIDs []string, userID string) (map[string][]string, error) {
	out := make(map[string][]string)
	if len(targetIDs) == 0 || userID == "" {
		return out, nil
	}
	var rows []model.Reaction
	err := r.db.WithContext(ctx).
		Select("target_id", "kind").
		Where("target_type = ? AND target_id IN ? AND user_id = ?", targetType, targetIDs, userID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = append(out[row.TargetID], row.Kind)
	}
	return out, nil
}
