package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/edukit/academia-api/internal/models"
)

func TestAttendanceUpsertDayReportsInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (enrollment_id, day) DO UPDATE SET status = EXCLUDED.status")).
		WithArgs(sqlmock.AnyArg(), "enroll-1", day, sqlmock.AnyArg(), "P").
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))

	entry := &models.AttendanceEntry{
		EnrollmentID: "enroll-1",
		Day:          time.Date(2026, 3, 14, 17, 45, 0, 0, time.UTC),
		Status:       models.AttendanceStatusPresent,
	}
	inserted, err := repo.UpsertDay(context.Background(), entry)
	require.NoError(t, err)
	require.True(t, inserted)
	// the stored day had its time-of-day stripped
	require.Equal(t, day, entry.Day)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceUpsertDayReportsOverwrite(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (enrollment_id, day)")).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(false))

	entry := &models.AttendanceEntry{
		EnrollmentID: "enroll-1",
		Day:          time.Now(),
		Status:       models.AttendanceStatusAbsent,
	}
	inserted, err := repo.UpsertDay(context.Background(), entry)
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceListByEnrollment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "day", "recorded_at", "status"}).
		AddRow("att-1", "enroll-1", day, day.Add(9*time.Hour), "P").
		AddRow("att-2", "enroll-1", day.AddDate(0, 0, 1), day.Add(33*time.Hour), "A")

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollment_attendance WHERE enrollment_id = $1 ORDER BY day")).
		WithArgs("enroll-1").
		WillReturnRows(rows)

	entries, err := repo.ListByEnrollment(context.Background(), "enroll-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.AttendanceStatusPresent, entries[0].Status)
	require.Equal(t, models.AttendanceStatusAbsent, entries[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
