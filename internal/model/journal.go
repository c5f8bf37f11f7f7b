package model

import "time"

// Moods a journal entry can be tagged with, brightest first.
const (
	MoodGreat = "great"
	MoodGood  = "good"
	MoodOkay  = "okay"
	MoodLow   = "low"
	MoodRough = "rough"
)

var moods = []string{MoodGreat, MoodGood, MoodOkay, MoodLow, MoodRough}

// Moods returns the known moods.
func Moods() []string { return append([]string(nil), moods...) }

// ValidMood reports whether m is empty or a known mood.
func ValidMood(m string) bool {
	if m == "" {
		return true
	}
	for _, v := range moods {
		if v == m {
			return true
		}
	}
	return false
}

// JournalEntry 私密日记，仅作者可见
type JournalEntry struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);index:idx_journal_user_created,priority:1;not null"`
	Title     string    `gorm:"type:varchar(120)"`
	Body      string    `gorm:"type:text;not null"`
	Mood      string    `gorm:"type:varchar(16)"`
	Tags      string    `gorm:"type:varchar(255)"`
	Prompt    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index:idx_journal_user_created,priority:2"`
	UpdatedAt time.Time
}

func (JournalEntry) TableName() string { return "journal_entries" }
