package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sunflower-post/backend/internal/api/middleware"
	"github.com/sunflower-post/backend/internal/service"
	"github.com/sunflower-post/backend/pkg/response"
)

// Services 依赖的全部业务服务
type Services struct {
	Users         service.UserService
	Rooms         service.RoomService
	Posts         service.PostService
	Replies       service.ReplyService
	Reactions     service.ReactionService
	Journal       service.JournalService
	Reflection    service.ReflectionService
	Subscriptions service.SubscriptionService
	Feed          service.FeedService
	Notifications service.NotificationService
	Health        HealthReporter
}

// Handler HTTP 处理器
type Handler struct {
	userService         service.UserService
	roomService         service.RoomService
	postService         service.PostService
	replyService        service.ReplyService
	reactionService     service.ReactionService
	journalService      service.JournalService
	reflectionService   service.ReflectionService
	subscriptionService service.SubscriptionService
	feedService         service.FeedService
	notificationService service.NotificationService
	health              HealthReporter
}

func New(s Services) *Handler {
	return &Handler{
		userService:         s.Users,
		roomService:         s.Rooms,
		postService:         s.Posts,
		replyService:        s.Replies,
		reactionService:     s.Reactions,
		journalService:      s.Journal,
		reflectionService:   s.Reflection,
		subscriptionService: s.Subscriptions,
		feedService:         s.Feed,
		notificationService: s.Notifications,
		health:              s.Health,
	}
}

// fail maps service errors onto the response envelope.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, "you can only change your own content")
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrUserExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, err.Error())
	default:
		response.InternalError(c, err)
	}
}

// bindJSON answers 400 itself when the body does not decode.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, "invalid request body")
		return false
	}
	return true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

func currentUser(c *gin.Context) string { return middleware.UserID(c) }
