package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sunflower-post/backend/pkg/response"
)

// ListRooms 全部房间
// @Summary 房间列表
// @Tags 房间
// @Produce json
// @Success 200 {object} response.Response{data=[]service.RoomView}
// @Router /api/v1/rooms [get]
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.roomService.ListRooms(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, rooms)
}

// GetRoom 房间详情
// @Summary 房间详情
// @Tags 房间
// @Produce json
// @Param slug path string true "房间标识"
// @Success 200 {object} response.Response{data=service.RoomView}
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{slug} [get]
func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.roomService.GetRoom(c.Request.Context(), c.Param("slug"), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, room)
}

// Subscribe 订阅房间，新帖会进入首页 feed
// @Summary 订阅房间
// @Tags 房间
// @Produce json
// @Security BearerAuth
// @Param slug path string true "房间标识"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{slug}/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	if err := h.subscriptionService.Subscribe(c.Request.Context(), currentUser(c), c.Param("slug")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"room": c.Param("slug"), "subscribed": true})
}

// Unsubscribe 取消订阅
// @Summary 取消订阅房间
// @Tags 房间
// @Produce json
// @Security BearerAuth
// @Param slug path string true "房间标识"
// @Success 200 {object} response.Response
// @Router /api/v1/rooms/{slug}/subscribe [delete]
func (h *Handler) Unsubscribe(c *gin.Context) {
	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), currentUser(c), c.Param("slug")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"room": c.Param("slug"), "subscribed": false})
}

// ListMyRooms 我订阅的房间
// @Summary 我的订阅
// @Tags 房间
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]service.SubscriptionView}
// @Router /api/v1/me/rooms [get]
func (h *Handler) ListMyRooms(c *gin.Context) {
	subs, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, subs)
}
