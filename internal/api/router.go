package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/sunflower-post/backend/docs"

	"github.com/sunflower-post/backend/config"
	"github.com/sunflower-post/backend/internal/api/handler"
	"github.com/sunflower-post/backend/internal/api/middleware"
)

// NewRouter 组装中间件与全部路由
func NewRouter(cfg *config.Config, h *handler.Handler, tokens middleware.TokenParser) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// /api 保留给现有前端路径
	register(r.Group("/api/v1"), h, tokens)
	register(r.Group("/api"), h, tokens)
	return r
}

func register(g *gin.RouterGroup, h *handler.Handler, tokens middleware.TokenParser) {
	auth := middleware.Auth(tokens)
	optional := middleware.OptionalAuth(tokens)

	g.POST("/auth/signup", h.Signup)
	g.POST("/auth/login", h.Login)

	me := g.Group("/me", auth)
	{
		me.GET("", h.GetMe)
		me.PATCH("", h.UpdateMe)
		me.DELETE("", h.DeleteMe)
		me.PUT("/password", h.ChangePassword)
		me.POST("/avatar", h.UploadAvatar)
		me.GET("/rooms", h.ListMyRooms)
	}
	g.GET("/users/:username", h.GetProfile)

	rooms := g.Group("/rooms")
	{
		rooms.GET("", optional, h.ListRooms)
		rooms.GET("/:slug", optional, h.GetRoom)
		rooms.POST("/:slug/subscribe", auth, h.Subscribe)
		rooms.DELETE("/:slug/subscribe", auth, h.Unsubscribe)
		rooms.GET("/:slug/posts", optional, h.ListPosts)
		rooms.POST("/:slug/posts", auth, h.CreatePost)
	}

	posts := g.Group("/posts")
	{
		posts.GET("/:id", optional, h.GetPost)
		posts.PATCH("/:id", auth, h.UpdatePost)
		posts.DELETE("/:id", auth, h.DeletePost)
		posts.GET("/:id/replies", optional, h.ListReplies)
		posts.POST("/:id/replies", auth, h.CreateReply)
		posts.POST("/:id/reactions", auth, h.TogglePostReaction)
	}
	g.DELETE("/replies/:id", auth, h.DeleteReply)
	g.POST("/replies/:id/reactions", auth, h.ToggleReplyReaction)

	tv := g.Group("/tv-movies/posts", handler.FixedRoom("tv-movies"))
	{
		tv.GET("", optional, h.ListPosts)
		tv.POST("", auth, h.CreatePost)
		tv.GET("/:id", optional, h.GetPost)
		tv.PATCH("/:id", auth, h.UpdatePost)
		tv.DELETE("/:id", auth, h.DeletePost)
	}

	journal := g.Group("/journal", auth)
	{
		journal.GET("", h.ListJournal)
		journal.POST("", h.CreateJournalEntry)
		journal.POST("/reflect", h.Reflect)
		journal.GET("/prompts", h.DailyPrompt)
		journal.GET("/:id", h.GetJournalEntry)
		journal.PUT("/:id", h.UpdateJournalEntry)
		journal.DELETE("/:id", h.DeleteJournalEntry)
	}

	g.GET("/feed", auth, h.HomeFeed)

	notes := g.Group("/notifications", auth)
	{
		notes.GET("", h.ListNotifications)
		notes.POST("/read-all", h.MarkAllNotificationsRead)
		notes.POST("/:id/read", h.MarkNotificationRead)
	}
}
