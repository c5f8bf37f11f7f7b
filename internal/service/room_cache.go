package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sunflower-post/backend/pkg/logger"
)

// roomPageIndex is what gets cached for a room's first page: the post ids in
// display order and the room total. Posts themselves are bulk loaded so
// reaction counts and edits are never stale.
type roomPageIndex struct {
	IDs   []string `json:"ids"`
	Total int64    `json:"total"`
}

// RoomPageCache caches first-page listings per room in a redis hash keyed by
// page size. A nil client disables it.
type RoomPageCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func NewRoomPageCache(client *redis.Client, ttl time.Duration) *RoomPageCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RoomPageCache{client: client, ttl: ttl}
}

func roomPageKey(room string) string { return fmt.Sprintf("room:first_page:%s", room) }

func (c *RoomPageCache) enabled() bool { return c != nil && c.client != nil }

func (c *RoomPageCache) Get(ctx context.Context, room string, pageSize int) ([]string, int64, bool) {
	if !c.enabled() {
		return nil, 0, false
	}
	data, err := c.client.HGet(ctx, roomPageKey(room), strconv.Itoa(pageSize)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("room page cache get failed", zap.String("room", room), zap.Error(err))
		}
		c.misses.Add(1)
		return nil, 0, false
	}
	var idx roomPageIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		c.misses.Add(1)
		return nil, 0, false
	}
	c.hits.Add(1)
	return idx.IDs, idx.Total, true
}

func (c *RoomPageCache) Put(ctx context.Context, room string, pageSize int, ids []string, total int64) {
	if !c.enabled() {
		return
	}
	payload, err := json.Marshal(roomPageIndex{IDs: ids, Total: total})
	if err != nil {
		return
	}
	key := roomPageKey(room)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, strconv.Itoa(pageSize), payload)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("room page cache put failed", zap.String("room", room), zap.Error(err))
	}
}

// Invalidate drops every cached page size of the room.
func (c *RoomPageCache) Invalidate(ctx context.Context, room string) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, roomPageKey(room)).Err(); err != nil {
		logger.Warn("room page cache invalidate failed", zap.String("room", room), zap.Error(err))
	}
}

// CacheCounters summarises lookups since start.
type CacheCounters struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func (c *RoomPageCache) Counters() CacheCounters {
	if c == nil {
		return CacheCounters{}
	}
	return CacheCounters{Hits: c.hits.Load(), Misses: c.misses.Load()}
}
