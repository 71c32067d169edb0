package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edukit/academia-api/internal/service"
	appErrors "github.com/edukit/academia-api/pkg/errors"
	"github.com/edukit/academia-api/pkg/response"
)

// ReportHandler exposes dashboard, report and export endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Dashboard godoc
// @Summary Aggregate academy snapshot
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Payments godoc
// @Summary Payments inside a date window
// @Tags Reports
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive"
// @Success 200 {object} response.Envelope
// @Router /reports/payments [get]
func (h *ReportHandler) Payments(c *gin.Context) {
	from, to, err := parseWindow(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reports.Payments(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Debtors godoc
// @Summary Enrollments with outstanding debt
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/debtors [get]
func (h *ReportHandler) Debtors(c *gin.Context) {
	rows, err := h.reports.Debtors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportPayments godoc
// @Summary Download the payments report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /reports/payments/export [get]
func (h *ReportHandler) ExportPayments(c *gin.Context) {
	from, to, err := parseWindow(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.reports.ExportPayments(c.Request.Context(), from, to, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeDownload(c, file)
}

// ExportDebtors godoc
// @Summary Download the debtors report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /reports/debtors/export [get]
func (h *ReportHandler) ExportDebtors(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.reports.ExportDebtors(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeDownload(c, file)
}

func parseWindow(c *gin.Context) (from, to *time.Time, err error) {
	if raw := c.Query("startDate"); raw != "" {
		parsed, parseErr := time.Parse("2006-01-02", raw)
		if parseErr != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
		}
		from = &parsed
	}
	if raw := c.Query("endDate"); raw != "" {
		parsed, parseErr := time.Parse("2006-01-02", raw)
		if parseErr != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
		}
		to = &parsed
	}
	return from, to, nil
}

func writeDownload(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
