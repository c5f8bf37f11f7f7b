package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sunflower-post/backend/internal/service"
	"github.com/sunflower-post/backend/pkg/response"
)

// ListJournal 日记列表（仅本人）
// @Summary 日记列表
// @Tags 日记
// @Produce json
// @Security BearerAuth
// @Param q query string false "搜索词"
// @Param mood query string false "心情"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.PageResult[service.JournalEntryView]}
// @Router /api/v1/journal [get]
func (h *Handler) ListJournal(c *gin.Context) {
	page, pageSize := pageParams(c)
	res, err := h.journalService.ListEntries(c.Request.Context(), currentUser(c), c.Query("q"), c.Query("mood"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// CreateJournalEntry 写日记
// @Summary 新建日记
// @Tags 日记
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.JournalInput true "日记内容"
// @Success 201 {object} response.Response{data=service.JournalEntryView}
// @Failure 400 {object} response.Response
// @Router /api/v1/journal [post]
func (h *Handler) CreateJournalEntry(c *gin.Context) {
	var req service.JournalInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.journalService.CreateEntry(c.Request.Context(), currentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, entry)
}

// GetJournalEntry 日记详情
// @Summary 日记详情
// @Tags 日记
// @Produce json
// @Security BearerAuth
// @Param id path string true "日记ID"
// @Success 200 {object} response.Response{data=service.JournalEntryView}
// @Failure 404 {object} response.Response
// @Router /api/v1/journal/{id} [get]
func (h *Handler) GetJournalEntry(c *gin.Context) {
	entry, err := h.journalService.GetEntry(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, entry)
}

// UpdateJournalEntry 修改日记
// @Summary 修改日记
// @Tags 日记
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "日记ID"
// @Param request body service.JournalUpdate true "需要修改的字段"
// @Success 200 {object} response.Response{data=service.JournalEntryView}
// @Router /api/v1/journal/{id} [put]
func (h *Handler) UpdateJournalEntry(c *gin.Context) {
	var req service.JournalUpdate
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.journalService.UpdateEntry(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, entry)
}

// DeleteJournalEntry 删除日记
// @Summary 删除日记
// @Tags 日记
// @Produce json
// @Security BearerAuth
// @Param id path string true "日记ID"
// @Success 200 {object} response.Response
// @Router /api/v1/journal/{id} [delete]
func (h *Handler) DeleteJournalEntry(c *gin.Context) {
	if err := h.journalService.DeleteEntry(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// Reflect 根据日记内容生成反思提示
// @Summary 反思提示
// @Tags 日记
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ReflectInput true "日记正文与心情"
// @Success 200 {object} response.Response{data=service.Reflection}
// @Router /api/v1/journal/reflect [post]
func (h *Handler) Reflect(c *gin.Context) {
	var req service.ReflectInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.reflectionService.Reflect(c.Request.Context(), currentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// DailyPrompt 每日提示，同一天同一心情结果固定
// @Summary 每日写作提示
// @Tags 日记
// @Produce json
// @Security BearerAuth
// @Param mood query string false "心情"
// @Success 200 {object} response.Response{data=service.DailyPrompt}
// @Router /api/v1/journal/prompts [get]
func (h *Handler) DailyPrompt(c *gin.Context) {
	res, err := h.reflectionService.DailyPrompt(c.Request.Context(), c.Query("mood"), time.Now().UTC())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}
