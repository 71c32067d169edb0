package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edukit/academia-api/internal/service"
	appErrors "github.com/edukit/academia-api/pkg/errors"
	"github.com/edukit/academia-api/pkg/response"
)

// FinanceHandler exposes enrollment, payment and grade endpoints.
type FinanceHandler struct {
	finance *service.FinanceService
}

// NewFinanceHandler constructs FinanceHandler.
func NewFinanceHandler(finance *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// Enroll godoc
// @Summary Enroll a student into a group
// @Tags Finances
// @Accept json
// @Produce json
// @Param payload body service.EnrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /finances/enroll [post]
func (h *FinanceHandler) Enroll(c *gin.Context) {
	var req service.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.finance.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Pay godoc
// @Summary Record a payment against an enrollment
// @Tags Finances
// @Accept json
// @Produce json
// @Param payload body service.RecordPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /finances/pay [post]
func (h *FinanceHandler) Pay(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.finance.RecordPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Grade godoc
// @Summary Record a grade on an enrollment
// @Tags Finances
// @Accept json
// @Produce json
// @Param payload body service.RecordGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /finances/grades [post]
func (h *FinanceHandler) Grade(c *gin.Context) {
	var req service.RecordGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.finance.RecordGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// GroupFinancials godoc
// @Summary List a group's enrollments with balances
// @Tags Finances
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /finances/groups/{groupId} [get]
func (h *FinanceHandler) GroupFinancials(c *gin.Context) {
	enrollments, err := h.finance.GroupFinancials(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Transactions godoc
// @Summary List the most recent payments
// @Tags Finances
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /finances/transactions [get]
func (h *FinanceHandler) Transactions(c *gin.Context) {
	payments, err := h.finance.RecentTransactions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}
