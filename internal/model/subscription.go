package model

import "time"

// RoomSubscription 用户订阅房间（用户关注房间，房间的订阅者即“粉丝”）
type RoomSubscription struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	UserID   string `gorm:"type:varchar(36);not null;index:idx_sub_user;uniqueIndex:ux_sub_pair,priority:1"`
	RoomSlug string `gorm:"type:varchar(32);not null;index:idx_sub_room;uniqueIndex:ux_sub_pair,priority:2"`
	// 复合唯一键，避免重复订阅
	CreatedAt time.Time
}

func (RoomSubscription) TableName() string { return "room_subscriptions" }
