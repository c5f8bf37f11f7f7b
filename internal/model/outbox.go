package model

import "time"

// Outbox statuses
const (
	OutboxPending    = "pending"
	OutboxProcessing = "processing"
	OutboxDone       = "done"
)

// Outbox 事件外发盒：新帖在同一事务内写入，由 fanout worker 投递到订阅者时间线
type Outbox struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	PostID      string    `gorm:"type:varchar(36);uniqueIndex"`
	RoomSlug    string    `gorm:"type:varchar(32);index"`
	AuthorID    string    `gorm:"type:varchar(36);index:idx_outbox_author"`
	CreatedAt   time.Time `gorm:"index"`
	Status      string    `gorm:"type:varchar(16);index"`
	ClaimedAt   *time.Time
	ProcessedAt *time.Time
	FanoutCount int64
}

func (Outbox) TableName() string { return "outbox" }
