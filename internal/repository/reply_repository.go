package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunflower-post/backend/internal/model"
)

type ReplyRepository interface {
	// Create stores the reply and bumps the post's reply_count.
	Create(ctx context.Context, r *model.Reply) error
	GetByID(ctx context.Context, id string) (*model.Reply, error)
	ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Reply, int64, error)
	Delete(ctx context.Context, r *model.Reply) error
}

type replyRepository struct{ db *gorm.DB }

func NewReplyRepository(db *gorm.DB) ReplyRepository { return &replyRepository{db: db} }

func (r *replyRepository) Create(ctx context.Context, reply *model.Reply) error {
	if reply.ID == "" {
		reply.ID = uuid.New().String()
	}
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now()
	}
	reply.UpdatedAt = reply.CreatedAt
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", reply.PostID).
			UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1)).Error
	})
}

func (r *replyRepository) GetByID(ctx context.Context, id string) (*model.Reply, error) {
	var reply model.Reply
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *replyRepository) ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Reply, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Reply{}).Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.Reply
	err := r.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, total, err
}

func (r *replyRepository) Delete(ctx context.Context, reply *model.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteReplyTx(tx, reply)
	})
}

func deleteReplyTx(tx *gorm.DB, reply *model.Reply) error {
	if err := tx.Where("target_type = ? AND target_id = ?", model.TargetReply, reply.ID).
		Delete(&model.Reaction{}).Error; err != nil {
		return err
	}
	if err := tx.Where("reply_id = ?", reply.ID).Delete(&model.Notification{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", reply.ID).Delete(&model.Reply{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return tx.Model(&model.Post{}).
		Where("id = ? AND reply_count > 0", reply.PostID).
		UpdateColumn("reply_count", gorm.Expr("reply_count - ?", 1)).Error
}
