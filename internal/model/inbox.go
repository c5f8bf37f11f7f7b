package model

import "time"

// FeedItem 首页时间线项（按 user_id 切分）
type FeedItem struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	UserID   string `gorm:"type:varchar(36);index:idx_feed_user_score,priority:1;uniqueIndex:ux_feed_user_post,priority:1"`
	PostID   string `gorm:"type:varchar(36);index:idx_feed_post;uniqueIndex:ux_feed_user_post,priority:2"`
	RoomSlug string `gorm:"type:varchar(32)"`
	// 复合唯一键，避免重复 (user, post)
	Score     int64 `gorm:"index:idx_feed_user_score,priority:2"`
	CreatedAt time.Time
}

func (FeedItem) TableName() string { return "feed_items" }
