package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sunflower-post/backend/internal/service"
	"github.com/sunflower-post/backend/pkg/response"
)

// HealthReporter checks dependencies and exposes background worker counters.
type HealthReporter interface {
	Ping(ctx context.Context) error
	Stats() map[string]interface{}
}

// SystemHealth 数据库、Redis 与后台任务的状态
type SystemHealth struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Notifier *service.Notifier
	Fanout   *service.FanoutWorker
	Cache    *service.RoomPageCache
}

func (s *SystemHealth) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (s *SystemHealth) Stats() map[string]interface{} {
	stats := map[string]interface{}{}
	if s.Notifier != nil {
		stats["notifier"] = s.Notifier.Stats()
	}
	if s.Fanout != nil {
		stats["fanout"] = s.Fanout.Stats()
	}
	if s.Cache != nil {
		stats["room_cache"] = s.Cache.Counters()
	}
	return stats
}

// Healthz 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if h.health == nil {
		response.Success(c, gin.H{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.health.Ping(ctx); err != nil {
		response.Fail(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	response.Success(c, gin.H{"status": "ok", "workers": h.health.Stats()})
}
