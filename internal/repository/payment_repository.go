package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edukit/academia-api/internal/models"
)

// PaymentRepository handles persistence of payments. Payments are
// append-only; the parent enrollment's running total is maintained in the
// same transaction as each insert.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentDetailColumns = `pay.id, pay.enrollment_id, pay.amount, pay.paid_at, pay.method, pay.created_at,
        s.first_name AS student_first_name, s.last_name AS student_last_name, s.document_id AS student_document_id,
        g.code AS group_code, p.name AS program_name`

const paymentDetailJoins = `FROM payments pay
        JOIN enrollments e ON e.id = pay.enrollment_id
        JOIN students s ON s.id = e.student_id
        JOIN groups g ON g.id = e.group_id
        JOIN programs p ON p.id = g.program_id`

// Create inserts the payment and increments the enrollment's total_paid
// atomically inside one transaction. The increment is a single UPDATE so
// concurrent payments against the same enrollment serialize on the row
// instead of racing a read-modify-write. sql.ErrNoRows is returned when
// the enrollment does not exist; nothing is persisted in that case.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.PaidAt.IsZero() {
		payment.PaidAt = now
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx,
		`UPDATE enrollments SET total_paid = total_paid + $2, updated_at = $3 WHERE id = $1`,
		payment.EnrollmentID, payment.Amount, now)
	if err != nil {
		return fmt.Errorf("increment total paid: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	const insert = `INSERT INTO payments (id, enrollment_id, amount, paid_at, method, created_at)
        VALUES (:id, :enrollment_id, :amount, :paid_at, :method, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment: %w", err)
	}
	return nil
}

// ListRecent returns the most recent payments by payment date, fully
// populated for transaction feeds.
func (r *PaymentRepository) ListRecent(ctx context.Context, limit int) ([]models.PaymentDetail, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf("SELECT %s %s ORDER BY pay.paid_at DESC LIMIT %d", paymentDetailColumns, paymentDetailJoins, limit)
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, fmt.Errorf("list recent payments: %w", err)
	}
	return payments, nil
}

// ListRecentByCreation returns the most recently created payments, used
// by the dashboard feed.
func (r *PaymentRepository) ListRecentByCreation(ctx context.Context, limit int) ([]models.PaymentDetail, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf("SELECT %s %s ORDER BY pay.created_at DESC LIMIT %d", paymentDetailColumns, paymentDetailJoins, limit)
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, fmt.Errorf("list dashboard payments: %w", err)
	}
	return payments, nil
}

// ListByDateRange returns payments whose payment date falls within
// [from, to), newest first, fully populated.
func (r *PaymentRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.PaymentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE pay.paid_at >= $1 AND pay.paid_at < $2 ORDER BY pay.paid_at DESC", paymentDetailColumns, paymentDetailJoins)
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, from, to); err != nil {
		return nil, fmt.Errorf("list payments by range: %w", err)
	}
	return payments, nil
}

// SumAll returns the all-time revenue across every payment.
func (r *PaymentRepository) SumAll(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.GetContext(ctx, &total, "SELECT COALESCE(SUM(amount), 0) FROM payments"); err != nil {
		return 0, fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}

// SumByEnrollment recomputes the paid total for one enrollment from its
// payment rows. Payments are the source of truth if total_paid is ever
// suspected stale.
func (r *PaymentRepository) SumByEnrollment(ctx context.Context, enrollmentID string) (float64, error) {
	var total float64
	if err := r.db.GetContext(ctx, &total, "SELECT COALESCE(SUM(amount), 0) FROM payments WHERE enrollment_id = $1", enrollmentID); err != nil {
		return 0, fmt.Errorf("sum enrollment payments: %w", err)
	}
	return total, nil
}
