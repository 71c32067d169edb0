package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edukit/academia-api/internal/models"
	appErrors "github.com/edukit/academia-api/pkg/errors"
	"github.com/edukit/academia-api/pkg/export"
)

const (
	dashboardCacheKey     = "dash:stats"
	dashboardCachePattern = "dash:*"
)

// ExportFormat selects the rendering of a report download.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat maps a query value onto a supported format.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case ExportFormatCSV, "":
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

// ExportFile is a rendered report ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type reportStore interface {
	CountActiveStudents(ctx context.Context) (int, error)
	CountActiveGroups(ctx context.Context) (int, error)
	TotalOutstandingDebt(ctx context.Context) (float64, error)
	ListDebtors(ctx context.Context) ([]models.DebtorRow, error)
}

type paymentReportStore interface {
	ListRecentByCreation(ctx context.Context, limit int) ([]models.PaymentDetail, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.PaymentDetail, error)
	SumAll(ctx context.Context) (float64, error)
}

// PaymentsReport is the date-windowed payment listing with its total.
type PaymentsReport struct {
	From     time.Time              `json:"from"`
	To       time.Time              `json:"to"`
	Total    float64                `json:"total"`
	Payments []models.PaymentDetail `json:"payments"`
}

// ReportService aggregates dashboard, payments and debtors reporting.
type ReportService struct {
	reports        reportStore
	payments       paymentReportStore
	cache          *CacheService
	csv            *export.CSVExporter
	pdf            *export.PDFExporter
	logger         *zap.Logger
	cacheTTL       time.Duration
	defaultWindow  time.Duration
	recentPayments int
}

// NewReportService constructs ReportService.
func NewReportService(reports reportStore, payments paymentReportStore, cache *CacheService,
	logger *zap.Logger, cacheTTL, defaultWindow time.Duration, recentPayments int) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultWindow <= 0 {
		defaultWindow = 30 * 24 * time.Hour
	}
	if recentPayments <= 0 {
		recentPayments = 5
	}
	return &ReportService{
		reports:        reports,
		payments:       payments,
		cache:          cache,
		csv:            export.NewCSVExporter(),
		pdf:            export.NewPDFExporter(),
		logger:         logger,
		cacheTTL:       cacheTTL,
		defaultWindow:  defaultWindow,
		recentPayments: recentPayments,
	}
}

// Dashboard returns the aggregate snapshot, served from cache when warm.
// The cache is invalidated on every write that moves one of the figures.
func (s *ReportService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var cached models.DashboardStats
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	stats := &models.DashboardStats{}
	var err error
	if stats.TotalStudents, err = s.reports.CountActiveStudents(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if stats.ActiveGroups, err = s.reports.CountActiveGroups(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count groups")
	}
	if stats.TotalRevenue, err = s.payments.SumAll(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum revenue")
	}
	if stats.TotalDebt, err = s.reports.TotalOutstandingDebt(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum debt")
	}
	if stats.RecentPayments, err = s.payments.ListRecentByCreation(ctx, s.recentPayments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent payments")
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache store failed", zap.Error(err))
	}
	return stats, nil
}

// Payments returns payments inside [from, to]. A missing window defaults
// to the trailing configured period ending now; the end date is inclusive
// of the whole day.
func (s *ReportService) Payments(ctx context.Context, from, to *time.Time) (*PaymentsReport, error) {
	end := time.Now().UTC()
	if to != nil {
		end = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}
	start := end.Add(-s.defaultWindow)
	if from != nil {
		start = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	}
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must precede end date")
	}

	payments, err := s.payments.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	report := &PaymentsReport{From: start, To: end, Payments: payments}
	for _, p := range payments {
		report.Total += p.Amount
	}
	return report, nil
}

// Debtors lists enrollments with a positive outstanding balance, largest
// debt first.
func (s *ReportService) Debtors(ctx context.Context) ([]models.DebtorRow, error) {
	rows, err := s.reports.ListDebtors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list debtors")
	}
	return rows, nil
}

// ExportPayments renders the payments report as a download.
func (s *ReportService) ExportPayments(ctx context.Context, from, to *time.Time, format ExportFormat) (*ExportFile, error) {
	report, err := s.Payments(ctx, from, to)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{
		Headers: []string{"Date", "Student", "Document", "Group", "Program", "Method", "Amount"},
	}
	for _, p := range report.Payments {
		data.Rows = append(data.Rows, []string{
			p.PaidAt.Format("2006-01-02"),
			p.StudentFirstName + " " + p.StudentLastName,
			p.StudentDocumentID,
			p.GroupCode,
			p.ProgramName,
			string(p.Method),
			formatAmount(p.Amount),
		})
	}
	return s.render(data, "payments-report", "Payments Report", format)
}

// ExportDebtors renders the debtors report as a download.
func (s *ReportService) ExportDebtors(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	rows, err := s.Debtors(ctx)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{
		Headers: []string{"Student", "Email", "Phone", "Group", "Program", "Cost", "Paid", "Debt"},
	}
	for _, d := range rows {
		phone := ""
		if d.StudentPhone != nil {
			phone = *d.StudentPhone
		}
		data.Rows = append(data.Rows, []string{
			d.StudentFirstName + " " + d.StudentLastName,
			d.StudentEmail,
			phone,
			d.GroupCode,
			d.ProgramName,
			formatAmount(d.ProgramCost),
			formatAmount(d.TotalPaid),
			formatAmount(d.Debt),
		})
	}
	return s.render(data, "debtors-report", "Debtors Report", format)
}

func (s *ReportService) render(data export.Dataset, name, title string, format ExportFormat) (*ExportFile, error) {
	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case ExportFormatPDF:
		body, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("%s-%s.pdf", name, stamp),
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	default:
		body, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("%s-%s.csv", name, stamp),
			ContentType: "text/csv",
			Body:        body,
		}, nil
	}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
