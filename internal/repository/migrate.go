package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/sunflower-post/backend/internal/model"
)

// AutoMigrate 初始化全部表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.Reply{},
		&model.Reaction{},
		&model.JournalEntry{},
		&model.RoomSubscription{},
		&model.Outbox{},
		&model.FeedItem{},
		&model.Notification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
