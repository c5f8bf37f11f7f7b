package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sunflower-post/backend/internal/model"
)

// JournalRepository every read and write is scoped by owner.
type JournalRepository interface {
	Create(ctx context.Context, e *model.JournalEntry) error
	Get(ctx context.Context, userID, id string) (*model.JournalEntry, error)
	List(ctx context.Context, userID, mood string, offset, limit int) ([]*model.JournalEntry, int64, error)
	ListRecent(ctx context.Context, userID, mood string, limit int) ([]*model.JournalEntry, error)
	Save(ctx context.Context, e *model.JournalEntry) error
	// Delete returns gorm.ErrRecordNotFound when nothing matched.
	Delete(ctx context.Context, userID, id string) error
}

type journalRepository struct{ db *gorm.DB }

func NewJournalRepository(db *gorm.DB) JournalRepository { return &journalRepository{db: db} }

func (r *journalRepository) Create(ctx context.Context, e *model.JournalEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *journalRepository) Get(ctx context.Context, userID, id string) (*model.JournalEntry, error) {
	var e model.JournalEntry
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *journalRepository) scope(ctx context.Context, userID, mood string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.JournalEntry{}).Where("user_id = ?", userID)
	if mood != "" {
		q = q.Where("mood = ?", mood)
	}
	return q
}

func (r *journalRepository) List(ctx context.Context, userID, mood string, offset, limit int) ([]*model.JournalEntry, int64, error) {
	var total int64
	if err := r.scope(ctx, userID, mood).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.JournalEntry
	err := r.scope(ctx, userID, mood).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, total, err
}

func (r *journalRepository) ListRecent(ctx context.Context, userID, mood string, limit int) ([]*model.JournalEntry, error) {
	var res []*model.JournalEntry
	err := r.scope(ctx, userID, mood).Order("created_at DESC, id DESC").Limit(limit).Find(&res).Error
	return res, err
}

func (r *journalRepository) Save(ctx context.Context, e *model.JournalEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *journalRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.JournalEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
