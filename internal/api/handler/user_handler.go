package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sunflower-post/backend/internal/service"
	"github.com/sunflower-post/backend/pkg/response"
)

// GetMe 当前用户
// @Summary 当前用户资料
// @Tags 账号
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.MeView}
// @Failure 401 {object} response.Response
// @Router /api/v1/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	me, err := h.userService.GetMe(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, me)
}

// UpdateMe 修改资料
// @Summary 修改个人资料
// @Tags 账号
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProfileUpdate true "资料字段，缺省不改"
// @Success 200 {object} response.Response{data=service.MeView}
// @Failure 400 {object} response.Response
// @Router /api/v1/me [patch]
func (h *Handler) UpdateMe(c *gin.Context) {
	var req service.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	me, err := h.userService.UpdateMe(c.Request.Context(), currentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, me)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags 账号
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PasswordChange true "旧密码与新密码"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/me/password [put]
func (h *Handler) ChangePassword(c *gin.Context) {
	var req service.PasswordChange
	if !bindJSON(c, &req) {
		return
	}
	if err := h.userService.ChangePassword(c.Request.Context(), currentUser(c), req); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// UploadAvatar 上传头像（multipart 字段 avatar）
// @Summary 上传头像
// @Tags 账号
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "jpg/png/gif/webp，最大 5MB"
// @Success 200 {object} response.Response{data=service.MeView}
// @Failure 400 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/me/avatar [post]
func (h *Handler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "avatar file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "cannot read avatar file")
		return
	}
	defer f.Close()

	me, err := h.userService.UploadAvatar(c.Request.Context(), currentUser(c), fh.Filename, fh.Size, f)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, me)
}

// DeleteMe 注销账号并删除全部内容
// @Summary 注销账号
// @Tags 账号
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/me [delete]
func (h *Handler) DeleteMe(c *gin.Context) {
	if err := h.userService.DeleteMe(c.Request.Context(), currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// GetProfile 公开资料
// @Summary 查看用户公开资料
// @Tags 账号
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=service.ProfileView}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.userService.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}
