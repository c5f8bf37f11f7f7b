package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sunflower-post/backend/internal/service"
	"github.com/sunflower-post/backend/pkg/response"
)

// ListReplies 回复列表，按时间正序
// @Summary 帖子回复列表
// @Tags 回复
// @Produce json
// @Param id path string true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.PageResult[service.ReplyView]}
// @Router /api/v1/posts/{id}/replies [get]
func (h *Handler) ListReplies(c *gin.Context) {
	page, pageSize := pageParams(c)
	res, err := h.replyService.ListReplies(c.Request.Context(), c.Param("id"), currentUser(c), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// CreateReply 回复帖子
// @Summary 回复帖子
// @Tags 回复
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Param request body service.ReplyInput true "回复内容"
// @Success 201 {object} response.Response{data=service.ReplyView}
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/replies [post]
func (h *Handler) CreateReply(c *gin.Context) {
	var req service.ReplyInput
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.replyService.CreateReply(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, reply)
}

// DeleteReply 删除回复（仅作者）
// @Summary 删除回复
// @Tags 回复
// @Produce json
// @Security BearerAuth
// @Param id path string true "回复ID"
// @Success 200 {object} response.Response
// @Router /api/v1/replies/{id} [delete]
func (h *Handler) DeleteReply(c *gin.Context) {
	if err := h.replyService.DeleteReply(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
