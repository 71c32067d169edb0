package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edukit/academia-api/internal/service"
	appErrors "github.com/edukit/academia-api/pkg/errors"
	"github.com/edukit/academia-api/pkg/response"
)

// AcademicHandler exposes attendance and enrollment lifecycle endpoints.
type AcademicHandler struct {
	academic *service.AcademicService
}

// NewAcademicHandler constructs AcademicHandler.
func NewAcademicHandler(academic *service.AcademicService) *AcademicHandler {
	return &AcademicHandler{academic: academic}
}

// TakeAttendance godoc
// @Summary Record one day of attendance for a group
// @Tags Academic
// @Accept json
// @Produce json
// @Param payload body service.TakeAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /academic/attendance [post]
func (h *AcademicHandler) TakeAttendance(c *gin.Context) {
	var req service.TakeAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.academic.TakeAttendance(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UpdateStatus godoc
// @Summary Update an enrollment's lifecycle status
// @Tags Academic
// @Accept json
// @Produce json
// @Param payload body service.UpdateEnrollmentStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /academic/status [put]
func (h *AcademicHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.academic.UpdateEnrollmentStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// EnrollmentRecord godoc
// @Summary Get one enrollment's grades and attendance sheet
// @Tags Academic
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /academic/enrollments/{id} [get]
func (h *AcademicHandler) EnrollmentRecord(c *gin.Context) {
	record, err := h.academic.EnrollmentRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
