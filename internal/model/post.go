package model

import "time"

// Post 房间内的帖子
type Post struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	RoomSlug     string    `gorm:"type:varchar(32);index:idx_post_room_created,priority:1;not null"`
	AuthorID     string    `gorm:"type:varchar(36);index:idx_post_author;not null"`
	Title        string    `gorm:"type:varchar(120)"`
	Body         string    `gorm:"type:text"`
	Tags         string    `gorm:"type:varchar(255)"` // comma joined, normalised
	Anonymous    bool      `gorm:"not null;default:false"`
	MediaTitle   string    `gorm:"type:varchar(200)"`
	MediaCreator string    `gorm:"type:varchar(200)"`
	MediaKind    string    `gorm:"type:varchar(16)"`
	Link         string    `gorm:"type:varchar(512)"`
	ReplyCount   int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"index:idx_post_room_created,priority:2"`
	UpdatedAt    time.Time

	Author *User `gorm:"foreignKey:AuthorID"`
}

func (Post) TableName() string { return "posts" }
