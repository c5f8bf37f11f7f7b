package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sunflower-post/backend/internal/service"
	"github.com/sunflower-post/backend/pkg/response"
)

const fixedRoomKey = "fixed_room"

// FixedRoom pins the post routes of a group to one room, so
// /tv-movies/posts behaves as /rooms/tv-movies/posts.
func FixedRoom(slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(fixedRoomKey, slug)
		c.Next()
	}
}

func roomSlug(c *gin.Context) string {
	if v, ok := c.Get(fixedRoomKey); ok {
		return v.(string)
	}
	return c.Param("slug")
}

// checkFixedRoom 别名路由下只允许访问该房间的帖子
func (h *Handler) checkFixedRoom(c *gin.Context, id string) bool {
	v, ok := c.Get(fixedRoomKey)
	if !ok {
		return true
	}
	post, err := h.postService.GetPost(c.Request.Context(), id, currentUser(c))
	if err != nil {
		fail(c, err)
		return false
	}
	if post.Room != v.(string) {
		fail(c, service.ErrPostNotFound)
		return false
	}
	return true
}

// ListPosts 房间帖子列表，支持搜索与标签过滤
// @Summary 房间帖子列表
// @Tags 帖子
// @Produce json
// @Param slug path string true "房间标识"
// @Param q query string false "搜索词，空格分隔，全部命中"
// @Param tag query string false "标签"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.PageResult[service.PostView]}
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{slug}/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, pageSize := pageParams(c)
	res, err := h.postService.ListPosts(c.Request.Context(), service.ListPostsQuery{
		Room:     roomSlug(c),
		Query:    c.Query("q"),
		Tag:      c.Query("tag"),
		ViewerID: currentUser(c),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// CreatePost 发帖
// @Summary 在房间发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "房间标识"
// @Param request body service.PostInput true "帖子内容"
// @Success 201 {object} response.Response{data=service.PostView}
// @Failure 400 {object} response.Response
// @Router /api/v1/rooms/{slug}/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req service.PostInput
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.postService.CreatePost(c.Request.Context(), currentUser(c), roomSlug(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, post)
}

// GetPost 帖子详情
// @Summary 帖子详情
// @Tags 帖子
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=service.PostView}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	if v, ok := c.Get(fixedRoomKey); ok && post.Room != v.(string) {
		fail(c, service.ErrPostNotFound)
		return
	}
	response.Success(c, post)
}

// UpdatePost 编辑帖子（仅作者）
// @Summary 编辑帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Param request body service.PostUpdate true "需要修改的字段"
// @Success 200 {object} response.Response{data=service.PostView}
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{id} [patch]
func (h *Handler) UpdatePost(c *gin.Context) {
	var req service.PostUpdate
	if !bindJSON(c, &req) {
		return
	}
	if !h.checkFixedRoom(c, c.Param("id")) {
		return
	}
	post, err := h.postService.UpdatePost(c.Request.Context(), c.Param("id"), currentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除帖子（仅作者），连带回复与反应
// @Summary 删除帖子
// @Tags 帖子
// @Produce json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if !h.checkFixedRoom(c, c.Param("id")) {
		return
	}
	if err := h.postService.DeletePost(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
