package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunflower-post/backend/internal/model"
)

// SubscriptionRepository 房间订阅：用户 -> 房间 与 房间 -> 订阅者 两个方向
type SubscriptionRepository interface {
	Create(ctx context.Context, userID, roomSlug string) error
	Delete(ctx context.Context, userID, roomSlug string) error
	Exists(ctx context.Context, userID, roomSlug string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.RoomSubscription, error)
	ListSubscribers(ctx context.Context, roomSlug string, offset, limit int) ([]*model.RoomSubscription, error)
	CountSubscribers(ctx context.Context, roomSlug string) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, userID, roomSlug string) error {
	s := &model.RoomSubscription{ID: uuid.New().String(), UserID: userID, RoomSlug: roomSlug}
	// 幂等：重复订阅不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(s).Error
}

func (r *subscriptionRepository) Delete(ctx context.Context, userID, roomSlug string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND room_slug = ?", userID, roomSlug).
		Delete(&model.RoomSubscription{}).Error
}

func (r *subscriptionRepository) Exists(ctx context.Context, userID, roomSlug string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.RoomSubscription{}).
		Where("user_id = ? AND room_slug = ?", userID, roomSlug).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID string) ([]*model.RoomSubscription, error) {
	var res []*model.RoomSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&res).Error
	return res, err
}

func (r *subscriptionRepository) ListSubscribers(ctx context.Context, roomSlug string, offset, limit int) ([]*model.RoomSubscription, error) {
	var res []*model.RoomSubscription
	err := r.db.WithContext(ctx).
		Where("room_slug = ?", roomSlug).
		Order("id").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *subscriptionRepository) CountSubscribers(ctx context.Context, roomSlug string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.RoomSubscription{}).Where("room_slug = ?", roomSlug).Count(&cnt).Error
	return cnt, err
}
