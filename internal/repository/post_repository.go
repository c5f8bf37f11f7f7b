package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunflower-post/backend/internal/model"
)

type PostRepository interface {
	// CreateWithOutbox 在一个事务内落地 Post 与 Outbox 事件
	CreateWithOutbox(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListByRoom(ctx context.Context, roomSlug string, offset, limit int) ([]*model.Post, int64, error)
	// ListRecentByRoom returns up to limit newest posts, the window searched by text queries.
	ListRecentByRoom(ctx context.Context, roomSlug string, limit int) ([]*model.Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Post, error)
	CountPublicByAuthor(ctx context.Context, authorID string) (int64, error)
	// UpdateContent writes only the editable columns; reply_count is owned by the reply repository.
	UpdateContent(ctx context.Context, p *model.Post) error
	// Delete removes the post with its replies, reactions, feed items and outbox event.
	Delete(ctx context.Context, id string) error
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) CreateWithOutbox(ctx context.Context, p *model.Post) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		out := &model.Outbox{
			ID:        uuid.New().String(),
			PostID:    p.ID,
			RoomSlug:  p.RoomSlug,
			AuthorID:  p.AuthorID,
			CreatedAt: p.CreatedAt,
			Status:    model.OutboxPending,
		}
		return tx.Create(out).Error
	})
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) ListByRoom(ctx context.Context, roomSlug string, offset, limit int) ([]*model.Post, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Post{}).Where("room_slug = ?", roomSlug)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.Post
	err := r.db.WithContext(ctx).Preload("Author").
		Where("room_slug = ?", roomSlug).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, total, err
}

func (r *postRepository) ListRecentByRoom(ctx context.Context, roomSlug string, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).Preload("Author").
		Where("room_slug = ?", roomSlug).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *postRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}
	var res []*model.Post
	err := r.db.WithContext(ctx).Preload("Author").Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *postRepository) CountPublicByAuthor(ctx context.Context, authorID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("author_id = ? AND anonymous = ?", authorID, false).
		Count(&cnt).Error
	return cnt, err
}

func (r *postRepository) UpdateContent(ctx context.Context, p *model.Post) error {
	p.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(&model.Post{ID: p.ID}).
		Updates(map[string]any{
			"title":         p.Title,
			"body":          p.Body,
			"tags":          p.Tags,
			"anonymous":     p.Anonymous,
			"media_title":   p.MediaTitle,
			"media_creator": p.MediaCreator,
			"media_kind":    p.MediaKind,
			"link":          p.Link,
			"updated_at":    p.UpdatedAt,
		}).Error
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deletePostTx(tx, id)
	})
}

func deletePostTx(tx *gorm.DB, postID string) error {
	var replyIDs []string
	if err := tx.Model(&model.Reply{}).Where("post_id = ?", postID).Pluck("id", &replyIDs).Error; err != nil {
		return err
	}
	if len(replyIDs) > 0 {
		if err := tx.Where("target_type = ? AND target_id IN ?", model.TargetReply, replyIDs).
			Delete(&model.Reaction{}).Error; err != nil {
			return err
		}
	}
	steps := []struct {
		query string
		args  []interface{}
		model interface{}
	}{
		{"target_type = ? AND target_id = ?", []interface{}{model.TargetPost, postID}, &model.Reaction{}},
		{"post_id = ?", []interface{}{postID}, &model.Reply{}},
		{"post_id = ?", []interface{}{postID}, &model.FeedItem{}},
		{"post_id = ?", []interface{}{postID}, &model.Outbox{}},
		{"post_id = ?", []interface{}{postID}, &model.Notification{}},
		{"id = ?", []interface{}{postID}, &model.Post{}},
	}
	for _, s := range steps {
		if err := tx.Where(s.query, s.args...).Delete(s.model).Error; err != nil {
			return err
		}
	}
	return nil
}
