package model

import "time"

// Reaction targets
const (
	TargetPost  = "post"
	TargetReply = "reply"
)

// Reaction 用户对帖子或回复的表情反应
type Reaction struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	TargetType string `gorm:"type:varchar(8);not null;uniqueIndex:ux_reaction,priority:1;index:idx_reaction_target,priority:1"`
	TargetID   string `gorm:"type:varchar(36);not null;uniqueIndex:ux_reaction,priority:2;index:idx_reaction_target,priority:2"`
	UserID     string `gorm:"type:varchar(36);not null;uniqueIndex:ux_reaction,priority:3"`
	Kind       string `gorm:"type:varchar(16);not null;uniqueIndex:ux_reaction,priority:4"`
	CreatedAt  time.Time
}

func (Reaction) TableName() string { return "reactions" }
