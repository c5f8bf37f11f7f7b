package service

import (
	"context"
	"time"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
)

type NotificationView struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	ActorID      string     `json:"actor_id"`
	PostID       string     `json:"post_id,omitempty"`
	ReplyID      string     `json:"reply_id,omitempty"`
	ReactionKind string     `json:"reaction_kind,omitempty"`
	Read         bool       `json:"read"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newNotificationView(n *model.Notification) NotificationView {
	return NotificationView{
		ID:           n.ID,
		Kind:         n.Kind,
		ActorID:      n.ActorID,
		PostID:       n.PostID,
		ReplyID:      n.ReplyID,
		ReactionKind: n.ReactionKind,
		Read:         n.ReadAt != nil,
		ReadAt:       n.ReadAt,
		CreatedAt:    n.CreatedAt,
	}
}

type NotificationPage struct {
	PageResult[NotificationView]
	Unread int64 `json:"unread"`
}

type NotificationService interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) (*NotificationPage, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) (*NotificationPage, error) {
	page, pageSize, offset := normalizePage(page, pageSize)
	items, total, err := s.repo.List(ctx, userID, unreadOnly, offset, pageSize)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]NotificationView, 0, len(items))
	for _, n := range items {
		views = append(views, newNotificationView(n))
	}
	return &NotificationPage{
		PageResult: PageResult[NotificationView]{Page: page, PageSize: pageSize, Total: total, List: views},
		Unread:     unread,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	return notFound(s.repo.MarkRead(ctx, userID, id), ErrNotificationNotFound)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
