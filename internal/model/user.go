package model

import "time"

// User 用户账号与公开资料
type User struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Username     string `gorm:"type:varchar(32);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(72);not null"`
	DisplayName  string `gorm:"type:varchar(64)"`
	Pronouns     string `gorm:"type:varchar(32)"`
	Bio          string `gorm:"type:text"`
	AvatarURL    string `gorm:"type:varchar(512)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
