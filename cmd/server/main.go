// @title Sunflower Post API
// @version 1.0
// @description 社区房间、帖子、回复、私密日记与反思提示
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/sunflower-post/backend/config"
	"github.com/sunflower-post/backend/internal/api"
	"github.com/sunflower-post/backend/internal/api/handler"
	"github.com/sunflower-post/backend/internal/repository"
	"github.com/sunflower-post/backend/internal/service"
	"github.com/sunflower-post/backend/pkg/ai"
	"github.com/sunflower-post/backend/pkg/cache"
	"github.com/sunflower-post/backend/pkg/database"
	"github.com/sunflower-post/backend/pkg/logger"
	"github.com/sunflower-post/backend/pkg/storage"
	"github.com/sunflower-post/backend/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			logger.Fatal("auto migrate failed", zap.Error(err))
		}
	}

	rdb, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("redis init failed", zap.Error(err))
	}

	// 未配置时保持接口为 nil，服务据此降级
	var store storage.ObjectStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3Store(ctx, cfg.S3)
		if err != nil {
			logger.Fatal("s3 init failed", zap.Error(err))
		}
		store = s3Store
	}
	var completer service.Completer
	if cfg.AI.Enabled {
		completer = ai.NewClient(cfg.AI)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	feedRepo := repository.NewFeedRepository(db)
	noteRepo := repository.NewNotificationRepository(db)

	notifier := service.NewNotifier(noteRepo, cfg.Workers.NotifierQueueSize)
	fanout := service.NewFanoutWorker(repository.NewOutboxRepository(db), subRepo, feedRepo,
		cfg.Workers.FanoutWorkers, cfg.Workers.FanoutBatchSize, cfg.Workers.FanoutClaimLimit, cfg.Workers.FanoutPollInterval)
	roomCache := service.NewRoomPageCache(rdb, cfg.Redis.RoomPageTTL)
	tokens := service.NewTokenManager(cfg.JWT)
	subs := service.NewSubscriptionService(subRepo)
	reactions := service.NewReactionService(repository.NewReactionRepository(db), postRepo, replyRepo, notifier)

	h := handler.New(handler.Services{
		Users:         service.NewUserService(userRepo, postRepo, tokens, store, roomCache),
		Rooms:         service.NewRoomService(subs),
		Posts:         service.NewPostService(postRepo, reactions, roomCache),
		Replies:       service.NewReplyService(replyRepo, postRepo, reactions, notifier),
		Reactions:     reactions,
		Journal:       service.NewJournalService(repository.NewJournalRepository(db)),
		Reflection:    service.NewReflectionService(completer, rdb, cfg.Redis.ReflectionTTL),
		Subscriptions: subs,
		Feed:          service.NewFeedService(feedRepo, postRepo, reactions),
		Notifications: service.NewNotificationService(noteRepo),
		Health:        &handler.SystemHealth{DB: db, Redis: rdb, Notifier: notifier, Fanout: fanout, Cache: roomCache},
	})

	stopNotifier := notifier.Start(cfg.Workers.NotifierWorkers)
	stopFanout := fanout.Start()

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(cfg, h, service.NewAuthenticator(tokens, userRepo)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := stopFanout(shutdownCtx); err != nil {
		logger.Error("fanout shutdown", zap.Error(err))
	}
	if err := stopNotifier(shutdownCtx); err != nil {
		logger.Error("notifier shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := database.Close(db); err != nil {
		logger.Error("database close", zap.Error(err))
	}
}
