package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
)

// ToggleResult 切换后的最新状态
type ToggleResult struct {
	TargetType string           `json:"target_type"`
	TargetID   string           `json:"target_id"`
	Counts     map[string]int64 `json:"counts"`
	Mine       []string         `json:"mine"`
	Active     bool             `json:"active"`
}

type ReactionService interface {
	// ToggleReaction adds the reaction, or removes it when the user already gave it.
	ToggleReaction(ctx context.Context, userID, targetType, targetID, kind string) (*ToggleResult, error)
	// Summaries batches counts and the viewer's kinds for many targets.
	Summaries(ctx context.Context, targetType string, ids []string, viewerID string) (map[string]ReactionSummary, error)
}

type reactionService struct {
	reactionRepo repository.ReactionRepository
	postRepo     repository.PostRepository
	replyRepo    repository.ReplyRepository
	notifier     NotificationSink
}

func NewReactionService(reactionRepo repository.ReactionRepository, postRepo repository.PostRepository,
	replyRepo repository.ReplyRepository, notifier NotificationSink) ReactionService {
	return &reactionService{reactionRepo: reactionRepo, postRepo: postRepo, replyRepo: replyRepo, notifier: notifier}
}

func (s *reactionService) ToggleReaction(ctx context.Context, userID, targetType, targetID, kind string) (*ToggleResult, error) {
	post, authorID, replyID, err := s.resolveTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	room, err := findRoom(post.RoomSlug)
	if err != nil {
		return nil, err
	}
	if !room.AllowsReaction(kind) {
		return nil, ErrReactionNotAllowed
	}

	active, err := s.reactionRepo.Toggle(ctx, targetType, targetID, userID, kind)
	if err != nil {
		return nil, err
	}
	if active && authorID != userID && s.notifier != nil {
		s.notifier.Enqueue(model.Notification{
			UserID:       authorID,
			ActorID:      userID,
			Kind:         model.NotifyReaction,
			PostID:       post.ID,
			ReplyID:      replyID,
			ReactionKind: kind,
		})
	}

	sums, err := s.Summaries(ctx, targetType, []string{targetID}, userID)
	if err != nil {
		return nil, err
	}
	sum := sums[targetID]
	return &ToggleResult{
		TargetType: targetType,
		TargetID:   targetID,
		Counts:     sum.Counts,
		Mine:       sum.Mine,
		Active:     active,
	}, nil
}

// resolveTarget returns the post the target lives under, the target's author
// and, for replies, the reply id.
func (s *reactionService) resolveTarget(ctx context.Context, targetType, targetID string) (*model.Post, string, string, error) {
	switch targetType {
	case model.TargetPost:
		p, err := s.postRepo.GetByID(ctx, targetID)
		if err != nil {
			return nil, "", "", notFound(err, ErrPostNotFound)
		}
		return p, p.AuthorID, "", nil
	case model.TargetReply:
		r, err := s.replyRepo.GetByID(ctx, targetID)
		if err != nil {
			return nil, "", "", notFound(err, ErrReplyNotFound)
		}
		p, err := s.postRepo.GetByID(ctx, r.PostID)
		if err != nil {
			return nil, "", "", notFound(err, ErrPostNotFound)
		}
		return p, r.AuthorID, r.ID, nil
	default:
		return nil, "", "", invalid("unknown reaction target %q", targetType)
	}
}

func (s *reactionService) Summaries(ctx context.Context, targetType string, ids []string, viewerID string) (map[string]ReactionSummary, error) {
	counts, err := s.reactionRepo.Counts(ctx, targetType, ids)
	if err != nil {
		return nil, err
	}
	mine, err := s.reactionRepo.Mine(ctx, targetType, ids, viewerID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]ReactionSummary, len(ids))
	for _, id := range ids {
		out[id] = newReactionSummary(counts[id], mine[id])
	}
	return out, nil
}

// notFound maps gorm's missing-row error to the given sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
