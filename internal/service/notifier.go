package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
	"github.com/sunflower-post/backend/pkg/logger"
)

// NotificationSink accepts notifications for later delivery.
type NotificationSink interface {
	Enqueue(n model.Notification)
}

// Notifier 异步写入提醒：有界队列 + 固定 worker，队列满时丢弃并告警
type Notifier struct {
	repo repository.NotificationRepository
	ch   chan model.Notification

	delivered atomic.Int64
	dropped   atomic.Int64
}

func NewNotifier(repo repository.NotificationRepository, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Notifier{repo: repo, ch: make(chan model.Notification, queueSize)}
}

// Start 启动 workers，返回停止函数；停止时先排空队列再退出
func (n *Notifier) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job := <-n.ch:
					n.deliver(job)
				case <-stopCh:
					for {
						select {
						case job := <-n.ch:
							n.deliver(job)
						default:
							return
						}
					}
				}
			}
		}()
	}

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(stopCh) })
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			logger.Warn("notifier stopped before queue drained", zap.Int("pending", len(n.ch)))
			return ctx.Err()
		}
	}
}

func (n *Notifier) deliver(job model.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.repo.Create(ctx, &job); err != nil {
		logger.Error("deliver notification failed",
			zap.String("user", job.UserID), zap.String("kind", job.Kind), zap.Error(err))
		return
	}
	n.delivered.Add(1)
}

// Enqueue never blocks.
func (n *Notifier) Enqueue(note model.Notification) {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	select {
	case n.ch <- note:
	default:
		n.dropped.Add(1)
		logger.Warn("notifier queue full, drop notification",
			zap.String("user", note.UserID), zap.String("kind", note.Kind))
	}
}

// QueueLen 返回当前队列长度（采样值）
func (n *Notifier) QueueLen() int { return len(n.ch) }

// NotifierStats 投递计数
type NotifierStats struct {
	Queued    int   `json:"queued"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
}

func (n *Notifier) Stats() NotifierStats {
	return NotifierStats{Queued: n.QueueLen(), Delivered: n.delivered.Load(), Dropped: n.dropped.Load()}
}
