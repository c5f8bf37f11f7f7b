package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/pkg/response"
)

type reactionRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// TogglePostReaction 切换帖子反应
// @Summary 切换帖子反应
// @Tags 反应
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Param request body reactionRequest true "反应类型"
// @Success 200 {object} response.Response{data=service.ToggleResult}
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/reactions [post]
func (h *Handler) TogglePostReaction(c *gin.Context) {
	h.toggleReaction(c, model.TargetPost)
}

// ToggleReplyReaction 切换回复反应
// @Summary 切换回复反应
// @Tags 反应
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "回复ID"
// @Param request body reactionRequest true "反应类型"
// @Success 200 {object} response.Response{data=service.ToggleResult}
// @Router /api/v1/replies/{id}/reactions [post]
func (h *Handler) ToggleReplyReaction(c *gin.Context) {
	h.toggleReaction(c, model.TargetReply)
}

func (h *Handler) toggleReaction(c *gin.Context, targetType string) {
	var req reactionRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.reactionService.ToggleReaction(c.Request.Context(), currentUser(c), targetType, c.Param("id"), req.Kind)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}
