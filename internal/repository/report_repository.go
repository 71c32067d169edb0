package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edukit/academia-api/internal/models"
)

// ReportRepository answers the read-only aggregation queries behind the
// dashboard and reports. It never mutates data.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CountActiveStudents counts students currently visible in listings.
func (r *ReportRepository) CountActiveStudents(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students WHERE active = TRUE"); err != nil {
		return 0, fmt.Errorf("count active students: %w", err)
	}
	return total, nil
}

// CountActiveGroups counts groups in ACTIVE status.
func (r *ReportRepository) CountActiveGroups(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM groups WHERE status = $1", models.GroupStatusActive); err != nil {
		return 0, fmt.Errorf("count active groups: %w", err)
	}
	return total, nil
}

// TotalOutstandingDebt sums per-enrollment debt clamped at zero across
// every enrollment. Clamping happens per row so an overpaid enrollment
// never offsets another student's balance.
func (r *ReportRepository) TotalOutstandingDebt(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(GREATEST(p.cost - e.total_paid, 0)), 0)
        FROM enrollments e
        JOIN groups g ON g.id = e.group_id
        JOIN programs p ON p.id = g.program_id`
	var total float64
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("sum outstanding debt: %w", err)
	}
	return total, nil
}

// ListDebtors returns one flattened row per enrollment with positive
// debt. The positivity filter makes clamping unnecessary here.
func (r *ReportRepository) ListDebtors(ctx context.Context) ([]models.DebtorRow, error) {
	const query = `SELECT e.id AS enrollment_id,
        s.first_name AS student_first_name, s.last_name AS student_last_name,
        s.email AS student_email, s.phone AS student_phone,
        g.code AS group_code, p.name AS program_name,
        p.cost AS program_cost, e.total_paid, p.cost - e.total_paid AS debt
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN groups g ON g.id = e.group_id
        JOIN programs p ON p.id = g.program_id
        WHERE p.cost - e.total_paid > 0
        ORDER BY debt DESC, s.last_name`
	var rows []models.DebtorRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list debtors: %w", err)
	}
	return rows, nil
}
