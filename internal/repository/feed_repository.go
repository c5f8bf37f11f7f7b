package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunflower-post/backend/internal/model"
)

// FeedRepository 首页时间线（inbox）
type FeedRepository interface {
	// InsertBatch ignores (user, post) pairs that already exist.
	InsertBatch(ctx context.Context, items []model.FeedItem) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.FeedItem, int64, error)
}

type feedRepository struct{ db *gorm.DB }

func NewFeedRepository(db *gorm.DB) FeedRepository { return &feedRepository{db: db} }

func (r *feedRepository) InsertBatch(ctx context.Context, items []model.FeedItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error
}

func (r *feedRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.FeedItem, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.FeedItem{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.FeedItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("score DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, total, err
}

// OutboxRepository 新帖事件的认领与完成
type OutboxRepository interface {
	// Claim moves up to limit pending events to processing and returns them.
	// Processing events whose lease ran out are claimed again.
	Claim(ctx context.Context, limit int) ([]model.Outbox, error)
	MarkDone(ctx context.Context, id string, fanoutCount int64) error
	// Release puts a processing event back to pending so a later poll retries it.
	Release(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// ClaimLease is how long a processing event belongs to its worker before another may take it.
const ClaimLease = 5 * time.Minute

type outboxRepository struct {
	db    *gorm.DB
	lease time.Duration
	// skipLocked adds FOR UPDATE SKIP LOCKED so several workers can claim concurrently.
	skipLocked bool
}

// NewOutboxRepository row locking is only requested on PostgreSQL; sqlite serialises writers anyway.
func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db, lease: ClaimLease, skipLocked: db.Dialector.Name() == "postgres"}
}

func (r *outboxRepository) Claim(ctx context.Context, limit int) ([]model.Outbox, error) {
	var batch []model.Outbox
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("status = ? OR (status = ? AND claimed_at < ?)", model.OutboxPending, model.OutboxProcessing, now.Add(-r.lease)).
			Order("created_at").Limit(limit)
		if r.skipLocked {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := q.Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.Outbox{}).Where("id IN ?", ids).
			Updates(map[string]any{"status": model.OutboxProcessing, "claimed_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	for i := range batch {
		batch[i].Status = model.OutboxProcessing
		batch[i].ClaimedAt = &now
	}
	return batch, nil
}

func (r *outboxRepository) MarkDone(ctx context.Context, id string, fanoutCount int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Outbox{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxDone, "processed_at": now, "fanout_count": fanoutCount}).Error
}

func (r *outboxRepository) Release(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Outbox{}).
		Where("id = ? AND status = ?", id, model.OutboxProcessing).
		Updates(map[string]any{"status": model.OutboxPending, "claimed_at": nil}).Error
}

func (r *outboxRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Outbox{}).Where("status = ?", status).Count(&cnt).Error
	return cnt, err
}
