package service

import (
	"context"
	"strings"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
)

type ReplyInput struct {
	Body      string `json:"body" validate:"required,max=2000"`
	Anonymous bool   `json:"anonymous"`
}

type ReplyService interface {
	CreateReply(ctx context.Context, authorID, postID string, in ReplyInput) (*ReplyView, error)
	ListReplies(ctx context.Context, postID, viewerID string, page, pageSize int) (*PageResult[ReplyView], error)
	DeleteReply(ctx context.Context, id, editorID string) error
}

type replyService struct {
	replyRepo repository.ReplyRepository
	postRepo  repository.PostRepository
	reactions ReactionService
	notifier  NotificationSink
}

func NewReplyService(replyRepo repository.ReplyRepository, postRepo repository.PostRepository,
	reactions ReactionService, notifier NotificationSink) ReplyService {
	return &replyService{replyRepo: replyRepo, postRepo: postRepo, reactions: reactions, notifier: notifier}
}

func (s *replyService) CreateReply(ctx context.Context, authorID, postID string, in ReplyInput) (*ReplyView, error) {
	in.Body = strings.TrimSpace(in.Body)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}

	r := &model.Reply{PostID: post.ID, AuthorID: authorID, Body: in.Body, Anonymous: in.Anonymous}
	if err := s.replyRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	if post.AuthorID != authorID && s.notifier != nil {
		s.notifier.Enqueue(model.Notification{
			UserID:  post.AuthorID,
			ActorID: authorID,
			Kind:    model.NotifyReply,
			PostID:  post.ID,
			ReplyID: r.ID,
		})
	}

	created, err := s.replyRepo.GetByID(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	v := newReplyView(created, authorID, newReactionSummary(nil, nil))
	return &v, nil
}

func (s *replyService) ListReplies(ctx context.Context, postID, viewerID string, page, pageSize int) (*PageResult[ReplyView], error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	page, pageSize, offset := normalizePage(page, pageSize)
	replies, total, err := s.replyRepo.ListByPost(ctx, postID, offset, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(replies))
	for i, r := range replies {
		ids[i] = r.ID
	}
	sums, err := s.reactions.Summaries(ctx, model.TargetReply, ids, viewerID)
	if err != nil {
		return nil, err
	}
	views := make([]ReplyView, 0, len(replies))
	for _, r := range replies {
		views = append(views, newReplyView(r, viewerID, sums[r.ID]))
	}
	return &PageResult[ReplyView]{Page: page, PageSize: pageSize, Total: total, List: views}, nil
}

func (s *replyService) DeleteReply(ctx context.Context, id, editorID string) error {
	r, err := s.replyRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, ErrReplyNotFound)
	}
	if r.AuthorID != editorID {
		return ErrForbidden
	}
	return s.replyRepo.Delete(ctx, r)
}
