package model

import "time"

// Notification kinds
const (
	NotifyReply    = "reply"
	NotifyReaction = "reaction"
)

// Notification 回复或反应提醒
type Notification struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	UserID       string `gorm:"type:varchar(36);not null;index:idx_notification_user_created,priority:1"`
	ActorID      string `gorm:"type:varchar(36);not null"`
	Kind         string `gorm:"type:varchar(16);not null"`
	PostID       string `gorm:"type:varchar(36);index"`
	ReplyID      string `gorm:"type:varchar(36)"`
	ReactionKind string `gorm:"type:varchar(16)"`
	ReadAt       *time.Time
	CreatedAt    time.Time `gorm:"index:idx_notification_user_created,priority:2"`
}

func (Notification) TableName() string { return "notifications" }
