package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sunflower-post/backend/pkg/response"
)

// HomeFeed 订阅房间的新帖
// @Summary 首页 feed
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.PageResult[service.PostView]}
// @Router /api/v1/feed [get]
func (h *Handler) HomeFeed(c *gin.Context) {
	page, pageSize := pageParams(c)
	res, err := h.feedService.HomeFeed(c.Request.Context(), currentUser(c), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// ListNotifications 通知列表
// @Summary 通知列表
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "只看未读"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.NotificationPage}
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	page, pageSize := pageParams(c)
	unread, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	res, err := h.notificationService.ListNotifications(c.Request.Context(), currentUser(c), unread, page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// MarkNotificationRead 标记已读
// @Summary 标记通知已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/notifications/{id}/read [post]
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllNotificationsRead 全部已读
// @Summary 全部标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/read-all [post]
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"updated": n})
}
