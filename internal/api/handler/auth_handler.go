package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sunflower-post/backend/internal/service"
	"github.com/sunflower-post/backend/pkg/response"
)

type loginRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup 注册
// @Summary 注册新用户
// @Tags 账号
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "注册信息"
// @Success 201 {object} response.Response{data=service.AuthResult}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req service.SignupInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.userService.Signup(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, res)
}

// Login 登录（邮箱或用户名）
// @Summary 登录
// @Tags 账号
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=service.AuthResult}
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	login := req.Login
	if login == "" {
		login = req.Email
	}
	if login == "" {
		login = req.Username
	}
	res, err := h.userService.Login(c.Request.Context(), service.LoginInput{Login: login, Password: req.Password})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}
