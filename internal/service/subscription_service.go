package service

import (
	"context"
	"time"

	"github.com/sunflower-post/backend/internal/repository"
)

type SubscriptionView struct {
	Room         string    `json:"room"`
	Name         string    `json:"name"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// SubscriptionService 房间订阅；订阅者会在首页时间线收到房间新帖
type SubscriptionService interface {
	Subscribe(ctx context.Context, userID, roomSlug string) error
	Unsubscribe(ctx context.Context, userID, roomSlug string) error
	ListSubscriptions(ctx context.Context, userID string) ([]SubscriptionView, error)
	IsSubscribed(ctx context.Context, userID, roomSlug string) (bool, error)
	CountSubscribers(ctx context.Context, roomSlug string) (int64, error)
}

type subscriptionService struct {
	subRepo repository.SubscriptionRepository
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository) SubscriptionService {
	return &subscriptionService{subRepo: subRepo}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, roomSlug string) error {
	if _, err := findRoom(roomSlug); err != nil {
		return err
	}
	return s.subRepo.Create(ctx, userID, roomSlug)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, roomSlug string) error {
	if _, err := findRoom(roomSlug); err != nil {
		return err
	}
	return s.subRepo.Delete(ctx, userID, roomSlug)
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, userID string) ([]SubscriptionView, error) {
	items, err := s.subRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]SubscriptionView, 0, len(items))
	for _, it := range items {
		room, err := findRoom(it.RoomSlug)
		if err != nil {
			// room retired from the catalog
			continue
		}
		res = append(res, SubscriptionView{Room: room.Slug, Name: room.Name, SubscribedAt: it.CreatedAt})
	}
	return res, nil
}

func (s *subscriptionService) IsSubscribed(ctx context.Context, userID, roomSlug string) (bool, error) {
	return s.subRepo.Exists(ctx, userID, roomSlug)
}

func (s *subscriptionService) CountSubscribers(ctx context.Context, roomSlug string) (int64, error) {
	return s.subRepo.CountSubscribers(ctx, roomSlug)
}
