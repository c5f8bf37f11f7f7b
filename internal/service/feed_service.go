package service

import (
	"context"

	"github.com/sunflower-post/backend/internal/repository"
)

// FeedService 首页时间线：订阅房间的新帖，按投递时间倒序
type FeedService interface {
	HomeFeed(ctx context.Context, userID string, page, pageSize int) (*PageResult[PostView], error)
}

type feedService struct {
	feedRepo  repository.FeedRepository
	postRepo  repository.PostRepository
	reactions ReactionService
}

func NewFeedService(feedRepo repository.FeedRepository, postRepo repository.PostRepository, reactions ReactionService) FeedService {
	return &feedService{feedRepo: feedRepo, postRepo: postRepo, reactions: reactions}
}

func (s *feedService) HomeFeed(ctx context.Context, userID string, page, pageSize int) (*PageResult[PostView], error) {
	page, pageSize, offset := normalizePage(page, pageSize)
	items, total, err := s.feedRepo.ListByUser(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.PostID
	}
	posts, err := s.postRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	views, err := buildPostViews(ctx, s.reactions, orderByIDs(posts, ids), userID)
	if err != nil {
		return nil, err
	}
	return &PageResult[PostView]{Page: page, PageSize: pageSize, Total: total, List: views}, nil
}
