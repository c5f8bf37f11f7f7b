package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sunflower-post/backend/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByLogin matches either the email or the username.
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// UpdateProfile writes the public profile columns only.
	UpdateProfile(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Exists(ctx context.Context, id string) (bool, error)
	// Delete removes the user and everything they wrote.
	Delete(ctx context.Context, id string) error
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ? OR username = ?", login, login).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(&model.User{ID: u.ID}).
		Updates(map[string]any{
			"display_name": u.DisplayName,
			"pronouns":     u.Pronouns,
			"bio":          u.Bio,
			"avatar_url":   u.AvatarURL,
			"updated_at":   u.UpdatedAt,
		}).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.db.WithContext(ctx).Model(&model.User{ID: id}).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now()}).Error
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&cnt).Error
	return cnt > 0, err
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []string
		if err := tx.Model(&model.Post{}).Where("author_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		for _, pid := range postIDs {
			if err := deletePostTx(tx, pid); err != nil {
				return err
			}
		}

		// replies the user left on other people's posts
		var replies []model.Reply
		if err := tx.Where("author_id = ?", id).Find(&replies).Error; err != nil {
			return err
		}
		for i := range replies {
			if err := deleteReplyTx(tx, &replies[i]); err != nil {
				return err
			}
		}

		for _, m := range []interface{}{&model.JournalEntry{}, &model.RoomSubscription{}, &model.FeedItem{}, &model.Reaction{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ? OR actor_id = ?", id, id).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.User{}).Error
	})
}
