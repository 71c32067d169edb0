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

// ClassroomHandler exposes classroom endpoints.
type ClassroomHandler struct {
	classrooms *service.ClassroomService
}

// NewClassroomHandler constructs ClassroomHandler.
func NewClassroomHandler(classrooms *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{classrooms: classrooms}
}

// List godoc
// @Summary List classrooms
// @Tags Classrooms
// @Produce json
// @Param search query string false "Search by name"
// @Param type query string false "Filter by type (PHYSICAL or VIRTUAL)"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *ClassroomHandler) List(c *gin.Context) {
	var filter models.ClassroomFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Type = models.ClassroomType(c.Query("type"))
	filter.Active = queryBool(c, "active")
	filter.Page, filter.PageSize = queryPage(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	classrooms, pagination, err := h.classrooms.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, pagination)
}

// Get godoc
// @Summary Get classroom detail
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) Get(c *gin.Context) {
	classroom, err := h.classrooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// Create godoc
// @Summary Create classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param payload body service.SaveClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Router /classrooms [post]
func (h *ClassroomHandler) Create(c *gin.Context) {
	var req service.SaveClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	classroom, err := h.classrooms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, classroom)
}

// Update godoc
// @Summary Update classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param id path string true "Classroom ID"
// @Param payload body service.SaveClassroomRequest true "Classroom payload"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id} [put]
func (h *ClassroomHandler) Update(c *gin.Context) {
	var req service.SaveClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	classroom, err := h.classrooms.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// Deactivate godoc
// @Summary Deactivate classroom
// @Tags Classrooms
// @Param id path string true "Classroom ID"
// @Success 204
// @Router /classrooms/{id} [delete]
func (h *ClassroomHandler) Deactivate(c *gin.Context) {
	if err := h.classrooms.SetActive(c.Request.Context(), c.Param("id"), false); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Activate godoc
// @Summary Reactivate classroom
// @Tags Classrooms
// @Param id path string true "Classroom ID"
// @Success 204
// @Router /classrooms/{id}/activate [post]
func (h *ClassroomHandler) Activate(c *gin.Context) {
	if err := h.classrooms.SetActive(c.Request.Context(), c.Param("id"), true); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
