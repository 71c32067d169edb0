package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edukit/academia-api/internal/models"
	appErrors "github.com/edukit/academia-api/pkg/errors"
)

type fakeReports struct {
	students int
	groups   int
	debt     float64
	debtors  []models.DebtorRow
}

func (f *fakeReports) CountActiveStudents(context.Context) (int, error) { return f.students, nil }
func (f *fakeReports) CountActiveGroups(context.Context) (int, error)   { return f.groups, nil }
func (f *fakeReports) TotalOutstandingDebt(context.Context) (float64, error) {
	return f.debt, nil
}
func (f *fakeReports) ListDebtors(context.Context) ([]models.DebtorRow, error) {
	return f.debtors, nil
}

type fakeReportPayments struct {
	recent  []models.PaymentDetail
	inRange []models.PaymentDetail
	total   float64
	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeReportPayments) ListRecentByCreation(context.Context, int) ([]models.PaymentDetail, error) {
	return f.recent, nil
}

func (f *fakeReportPayments) ListByDateRange(_ context.Context, from, to time.Time) ([]models.PaymentDetail, error) {
	f.gotFrom, f.gotTo = from, to
	return f.inRange, nil
}

func (f *fakeReportPayments) SumAll(context.Context) (float64, error) { return f.total, nil }

type memoryCache struct {
	store map[string]interface{}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	value, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*models.DashboardStats) = *value.(*models.DashboardStats)
	return nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.store[key] = value
	return nil
}

func (m *memoryCache) DeleteByPattern(context.Context, string) error {
	m.store = map[string]interface{}{}
	return nil
}

func newReportFixture(reports *fakeReports, payments *fakeReportPayments, cacheRepo CacheRepository) *ReportService {
	enabled := cacheRepo != nil
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, enabled)
	return NewReportService(reports, payments, cache, nil, time.Minute, 30*24*time.Hour, 5)
}

func TestDashboardAggregatesCounters(t *testing.T) {
	reports := &fakeReports{students: 42, groups: 7, debt: 1200}
	payments := &fakeReportPayments{
		total:  9800,
		recent: []models.PaymentDetail{{Payment: models.Payment{Amount: 100}}},
	}
	svc := newReportFixture(reports, payments, nil)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TotalStudents)
	assert.Equal(t, 7, stats.ActiveGroups)
	assert.Equal(t, 9800.0, stats.TotalRevenue)
	assert.Equal(t, 1200.0, stats.TotalDebt)
	require.Len(t, stats.RecentPayments, 1)
}

func TestDashboardServesFromCache(t *testing.T) {
	cacheRepo := &memoryCache{store: map[string]interface{}{}}
	reports := &fakeReports{students: 1}
	payments := &fakeReportPayments{}
	svc := newReportFixture(reports, payments, cacheRepo)

	first, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalStudents)

	// a later read must not see fresher repo data until invalidation
	reports.students = 99
	second, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalStudents)
}

func TestPaymentsDefaultsToTrailingWindow(t *testing.T) {
	payments := &fakeReportPayments{}
	svc := newReportFixture(&fakeReports{}, payments, nil)

	report, err := svc.Payments(context.Background(), nil, nil)
	require.NoError(t, err)
	window := report.To.Sub(report.From)
	assert.Equal(t, 30*24*time.Hour, window)
	assert.WithinDuration(t, time.Now().UTC(), report.To, time.Minute)
}

func TestPaymentsEndDateIsInclusive(t *testing.T) {
	payments := &fakeReportPayments{}
	svc := newReportFixture(&fakeReports{}, payments, nil)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	_, err := svc.Payments(context.Background(), &from, &to)
	require.NoError(t, err)
	assert.Equal(t, from, payments.gotFrom)
	// exclusive upper bound one day past "to" covers the whole end day
	assert.Equal(t, to.AddDate(0, 0, 1), payments.gotTo)
}

func TestPaymentsRejectsInvertedWindow(t *testing.T) {
	svc := newReportFixture(&fakeReports{}, &fakeReportPayments{}, nil)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Payments(context.Background(), &from, &to)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentsTotalsAmounts(t *testing.T) {
	payments := &fakeReportPayments{inRange: []models.PaymentDetail{
		{Payment: models.Payment{Amount: 100}},
		{Payment: models.Payment{Amount: 250.5}},
	}}
	svc := newReportFixture(&fakeReports{}, payments, nil)

	report, err := svc.Payments(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 350.5, report.Total)
}

func TestExportDebtorsRendersCSV(t *testing.T) {
	phone := "555-0101"
	reports := &fakeReports{debtors: []models.DebtorRow{{
		StudentFirstName: "Ana",
		StudentLastName:  "Ruiz",
		StudentEmail:     "ana@example.com",
		StudentPhone:     &phone,
		GroupCode:        "G-01",
		ProgramName:      "Go Fundamentals",
		ProgramCost:      500,
		TotalPaid:        200,
		Debt:             300,
	}}}
	svc := newReportFixture(reports, &fakeReportPayments{}, nil)

	file, err := svc.ExportDebtors(context.Background(), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	body := string(file.Body)
	assert.Contains(t, body, "Student,Email,Phone,Group,Program,Cost,Paid,Debt")
	assert.Contains(t, body, "Ana Ruiz")
	assert.Contains(t, body, "300.00")
}

func TestExportPaymentsRendersPDF(t *testing.T) {
	payments := &fakeReportPayments{inRange: []models.PaymentDetail{{
		Payment: models.Payment{Amount: 100, Method: models.PaymentMethodCash, PaidAt: time.Now()},
	}}}
	svc := newReportFixture(&fakeReports{}, payments, nil)

	file, err := svc.ExportPayments(context.Background(), nil, nil, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.NotEmpty(t, file.Body)
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, format)

	format, err = ParseExportFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, format)

	_, err = ParseExportFormat("xlsx")
	require.Error(t, err)
}
