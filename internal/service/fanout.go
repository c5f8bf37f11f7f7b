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

// FanoutWorker 从 outbox 拉取新帖事件，写入房间订阅者的首页时间线
type FanoutWorker struct {
	outboxRepo   repository.OutboxRepository
	subRepo      repository.SubscriptionRepository
	feedRepo     repository.FeedRepository
	batchSize    int
	claimLimit   int
	pollInterval time.Duration
	workers      int

	processed atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
}

func NewFanoutWorker(outboxRepo repository.OutboxRepository, subRepo repository.SubscriptionRepository,
	feedRepo repository.FeedRepository, workers, batchSize, claimLimit int, pollInterval time.Duration) *FanoutWorker {
	if workers <= 0 {
		workers = 2
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	if claimLimit <= 0 {
		claimLimit = 64
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &FanoutWorker{
		outboxRepo:   outboxRepo,
		subRepo:      subRepo,
		feedRepo:     feedRepo,
		workers:      workers,
		batchSize:    batchSize,
		claimLimit:   claimLimit,
		pollInterval: pollInterval,
	}
}

// Start 启动若干 worker 轮询处理 outbox；返回停止函数
func (w *FanoutWorker) Start() func(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	return func(stopCtx context.Context) error {
		cancel()
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-stopCtx.Done():
			return stopCtx.Err()
		}
	}
}

func (w *FanoutWorker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("fanout claim failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce claims one batch of pending events and fans each out. It returns
// how many events were handled.
func (w *FanoutWorker) ProcessOnce(ctx context.Context) (int, error) {
	batch, err := w.outboxRepo.Claim(ctx, w.claimLimit)
	if err != nil {
		return 0, err
	}
	// 退出时 ctx 已取消，收尾写入仍需完成，否则事件会滞留在 processing
	settle := context.WithoutCancel(ctx)
	for _, ev := range batch {
		written, err := w.deliver(ctx, ev)
		if err != nil {
			// feed inserts are idempotent, so a retry only fills in the missing subscribers
			w.failed.Add(1)
			logger.Error("fanout event failed", zap.String("post", ev.PostID), zap.String("room", ev.RoomSlug), zap.Error(err))
			if rerr := w.outboxRepo.Release(settle, ev.ID); rerr != nil {
				logger.Error("release outbox failed", zap.String("outbox", ev.ID), zap.Error(rerr))
			}
			continue
		}
		if err := w.outboxRepo.MarkDone(settle, ev.ID, written); err != nil {
			logger.Error("mark outbox done failed", zap.String("outbox", ev.ID), zap.Error(err))
			continue
		}
		w.processed.Add(1)
		w.delivered.Add(written)
	}
	return len(batch), nil
}

// deliver pages through the room's subscribers, skipping the author.
func (w *FanoutWorker) deliver(ctx context.Context, ev model.Outbox) (int64, error) {
	var written int64
	score := ev.CreatedAt.UnixNano()
	for offset := 0; ; offset += w.batchSize {
		subs, err := w.subRepo.ListSubscribers(ctx, ev.RoomSlug, offset, w.batchSize)
		if err != nil {
			return written, err
		}
		if len(subs) == 0 {
			break
		}
		now := time.Now()
		records := make([]model.FeedItem, 0, len(subs))
		for _, s := range subs {
			if s.UserID == ev.AuthorID {
				continue
			}
			records = append(records, model.FeedItem{
				ID:        uuid.New().String(),
				UserID:    s.UserID,
				PostID:    ev.PostID,
				RoomSlug:  ev.RoomSlug,
				Score:     score,
				CreatedAt: now,
			})
		}
		if err := w.feedRepo.InsertBatch(ctx, records); err != nil {
			return written, err
		}
		written += int64(len(records))
		if len(subs) < w.batchSize {
			break
		}
	}
	return written, nil
}

// FanoutStats 累计计数
type FanoutStats struct {
	Processed int64 `json:"processed"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
}

func (w *FanoutWorker) Stats() FanoutStats {
	return FanoutStats{Processed: w.processed.Load(), Delivered: w.delivered.Load(), Failed: w.failed.Load()}
}
