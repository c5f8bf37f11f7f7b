package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sunflower-post/backend/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]*model.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead returns gorm.ErrRecordNotFound when the notification isn't the user's.
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) scope(ctx context.Context, userID string, unreadOnly bool) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	return q
}

func (r *notificationRepository) List(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]*model.Notification, int64, error) {
	var total int64
	if err := r.scope(ctx, userID, unreadOnly).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.Notification
	err := r.scope(ctx, userID, unreadOnly).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, total, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.scope(ctx, userID, true).Count(&cnt).Error
	return cnt, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	var n model.Notification
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return err
	}
	if n.ReadAt != nil {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("read_at", time.Now()).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())
	return res.RowsAffected, res.Error
}
