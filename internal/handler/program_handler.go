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

// ProgramHandler exposes program catalog endpoints.
type ProgramHandler struct {
	programs *service.ProgramService
}

// NewProgramHandler constructs ProgramHandler.
func NewProgramHandler(programs *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programs: programs}
}

// List godoc
// @Summary List programs
// @Tags Programs
// @Produce json
// @Param search query string false "Search by code or name"
// @Param type query string false "Filter by type"
// @Param level query string false "Filter by level"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	var filter models.ProgramFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Type = models.ProgramType(c.Query("type"))
	filter.Level = models.ProgramLevel(c.Query("level"))
	filter.Active = queryBool(c, "active")
	filter.Page, filter.PageSize = queryPage(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	programs, pagination, err := h.programs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, pagination)
}

// Get godoc
// @Summary Get program detail
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id} [get]
func (h *ProgramHandler) Get(c *gin.Context) {
	program, err := h.programs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Create godoc
// @Summary Create program
// @Tags Programs
// @Accept json
// @Produce json
// @Param payload body service.CreateProgramRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Router /programs [post]
func (h *ProgramHandler) Create(c *gin.Context) {
	var req service.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	program, err := h.programs.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Update godoc
// @Summary Update program
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param payload body service.UpdateProgramRequest true "Program payload"
// @Success 200 {object} response.Envelope
// @Router /programs/{id} [put]
func (h *ProgramHandler) Update(c *gin.Context) {
	var req service.UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	program, err := h.programs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Deactivate godoc
// @Summary Deactivate program
// @Tags Programs
// @Param id path string true "Program ID"
// @Success 204
// @Router /programs/{id} [delete]
func (h *ProgramHandler) Deactivate(c *gin.Context) {
	if err := h.programs.SetActive(c.Request.Context(), c.Param("id"), false); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Activate godoc
// @Summary Reactivate program
// @Tags Programs
// @Param id path string true "Program ID"
// @Success 204
// @Router /programs/{id}/activate [post]
func (h *ProgramHandler) Activate(c *gin.Context) {
	if err := h.programs.SetActive(c.Request.Context(), c.Param("id"), true); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
