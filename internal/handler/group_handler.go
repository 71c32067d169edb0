package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edukit/academia-api/internal/models"
	"github.com/edukit/academia-api/internal/service"
	appErrors "github.com/edukit/academia-api/pkg/errors"
	"github.com/edukit/academia-api/pkg/response"
)

// GroupHandler exposes group endpoints.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler constructs GroupHandler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type updateGroupStatusRequest struct {
	Status models.GroupStatus `json:"status" binding:"required"`
}

// List godoc
// @Summary List groups
// @Tags Groups
// @Produce json
// @Param search query string false "Search by code"
// @Param programId query string false "Filter by program"
// @Param teacherId query string false "Filter by teacher"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	var filter models.GroupFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.ProgramID = c.Query("programId")
	filter.TeacherID = c.Query("teacherId")
	filter.Status = models.GroupStatus(c.Query("status"))
	filter.Page, filter.PageSize = queryPage(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	groups, pagination, err := h.groups.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, pagination)
}

// Get godoc
// @Summary Get group detail with schedule
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Create godoc
// @Summary Create group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body service.SaveGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req service.SaveGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	group, err := h.groups.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update godoc
// @Summary Update group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body service.SaveGroupRequest true "Group payload"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	var req service.SaveGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	group, err := h.groups.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// UpdateStatus godoc
// @Summary Update group lifecycle status
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body updateGroupStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/status [patch]
func (h *GroupHandler) UpdateStatus(c *gin.Context) {
	var req updateGroupStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	group, err := h.groups.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}
