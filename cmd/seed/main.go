package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sunflower-post/backend/config"
	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
	"github.com/sunflower-post/backend/internal/service"
	"github.com/sunflower-post/backend/pkg/database"
	"github.com/sunflower-post/backend/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// 每个房间一条能通过校验的样例帖
var samples = map[string]service.PostInput{
	"book-club":  {Title: "Currently reading", Body: "Slow chapters, big feelings.", MediaTitle: "The Secret Garden", MediaCreator: "Frances Hodgson Burnett", Tags: []string{"classics"}},
	"music-room": {Title: "On repeat", Body: "This one gets me through mornings.", MediaTitle: "Here Comes the Sun", MediaCreator: "The Beatles", Link: "https://example.com/here-comes-the-sun"},
	"tv-movies":  {Title: "Comfort watch", Body: "Gentle and funny.", MediaTitle: "Paddington 2", MediaKind: "movie", Tags: []string{"comfort"}},
	"inspo-wall": {Body: "You are allowed to be both a masterpiece and a work in progress."},
	"dilemmas":   {Title: "Saying no", Body: "How do you turn down plans without feeling guilty?", Anonymous: true},
	"lounge":     {Title: "Hello", Body: "Made tea and watered the plants today."},
	"hope-bank":  {Title: "Small win", Body: "First sunflower of the season just opened.", Tags: []string{"garden"}},
}

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level, "console"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db := must(database.InitDB(cfg))
	if err := repository.AutoMigrate(db); err != nil {
		panic(err)
	}
	ctx := context.Background()

	users := envInt("USERS", 5)
	rounds := envInt("POSTS", 2)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	feedRepo := repository.NewFeedRepository(db)

	tokens := service.NewTokenManager(cfg.JWT)
	userSvc := service.NewUserService(userRepo, postRepo, tokens, nil, nil)
	subSvc := service.NewSubscriptionService(subRepo)
	reactions := service.NewReactionService(repository.NewReactionRepository(db), postRepo,
		repository.NewReplyRepository(db), service.NewNotifier(repository.NewNotificationRepository(db), 16))
	postSvc := service.NewPostService(postRepo, reactions, nil)

	ids := make([]string, 0, users)
	for i := 0; i < users; i++ {
		name := fmt.Sprintf("sunny%02d", i)
		res, err := userSvc.Signup(ctx, service.SignupInput{
			Username:    name,
			Email:       name + "@example.com",
			Password:    "sunflower123",
			DisplayName: fmt.Sprintf("Sunny %d", i),
		})
		if errors.Is(err, service.ErrUserExists) {
			u := must(userRepo.GetByUsername(ctx, name))
			ids = append(ids, u.ID)
			continue
		}
		ids = append(ids, must(res, err).User.ID)
	}

	// 每个用户订阅全部房间，feed 才有内容
	for _, id := range ids {
		for _, r := range model.Rooms() {
			if err := subSvc.Subscribe(ctx, id, r.Slug); err != nil {
				panic(err)
			}
		}
	}

	created := 0
	for round := 0; round < rounds; round++ {
		for i, r := range model.Rooms() {
			in := samples[r.Slug]
			author := ids[(i+round)%len(ids)]
			must(postSvc.CreatePost(ctx, author, r.Slug, in))
			created++
		}
	}

	worker := service.NewFanoutWorker(repository.NewOutboxRepository(db), subRepo, feedRepo,
		cfg.Workers.FanoutWorkers, cfg.Workers.FanoutBatchSize, cfg.Workers.FanoutClaimLimit, cfg.Workers.FanoutPollInterval)
	start := time.Now()
	events := 0
	for {
		n := must(worker.ProcessOnce(ctx))
		if n == 0 {
			break
		}
		events += n
	}
	stats := worker.Stats()
	logger.Info("seed done",
		zap.Int("users", len(ids)),
		zap.Int("posts", created),
		zap.Int("fanout_events", events),
		zap.Int64("feed_items", stats.Delivered),
		zap.Duration("fanout_took", time.Since(start)),
	)
}
