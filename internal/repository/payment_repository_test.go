package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/edukit/academia-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPaymentCreateCommitsInsertAndIncrementTogether(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET total_paid = total_paid + $2")).
		WithArgs("enroll-1", 150.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment := &models.Payment{
		EnrollmentID: "enroll-1",
		Amount:       150,
		Method:       models.PaymentMethodCash,
	}
	require.NoError(t, repo.Create(context.Background(), payment))
	require.NotEmpty(t, payment.ID)
	require.False(t, payment.PaidAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentCreateUnknownEnrollmentRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET total_paid = total_paid + $2")).
		WithArgs("missing", 150.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	payment := &models.Payment{EnrollmentID: "missing", Amount: 150, Method: models.PaymentMethodCash}
	err := repo.Create(context.Background(), payment)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentCreateInsertFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET total_paid = total_paid + $2")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	payment := &models.Payment{EnrollmentID: "enroll-1", Amount: 10, Method: models.PaymentMethodCard}
	require.Error(t, repo.Create(context.Background(), payment))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentListByDateRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "enrollment_id", "amount", "paid_at", "method", "created_at",
		"student_first_name", "student_last_name", "student_document_id", "group_code", "program_name",
	}).AddRow("pay-1", "enroll-1", 150.0, from.Add(time.Hour), "CASH", from.Add(time.Hour),
		"Ana", "Ruiz", "DOC-1", "G-01", "Go Fundamentals")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE pay.paid_at >= $1 AND pay.paid_at < $2")).
		WithArgs(from, to).
		WillReturnRows(rows)

	payments, err := repo.ListByDateRange(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, "Ana", payments[0].StudentFirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSumAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM payments")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1234.5))

	total, err := repo.SumAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1234.5, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
