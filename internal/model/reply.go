package model

import "time"

// Reply 帖子的回复
type Reply struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	PostID    string    `gorm:"type:varchar(36);index:idx_reply_post_created,priority:1;not null"`
	AuthorID  string    `gorm:"type:varchar(36);index;not null"`
	Body      string    `gorm:"type:text;not null"`
	Anonymous bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index:idx_reply_post_created,priority:2"`
	UpdatedAt time.Time

	Author *User `gorm:"foreignKey:AuthorID"`
}

func (Reply) TableName() string { return "replies" }
