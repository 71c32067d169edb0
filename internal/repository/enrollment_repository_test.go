package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/edukit/academia-api/internal/models"
)

func TestEnrollmentCreateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "enrollments_student_id_group_id_key"})

	err := repo.Create(context.Background(), &models.Enrollment{
		StudentID: "student-1",
		GroupID:   "group-1",
	})
	require.ErrorIs(t, err, ErrDuplicatePair)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentCreateDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{StudentID: "student-1", GroupID: "group-1"}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	require.Equal(t, models.EnrollmentStatusEnrolled, enrollment.Status)
	require.NotEmpty(t, enrollment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentFilterExisting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("enroll-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM enrollments WHERE group_id = $1 AND id IN ($2,$3)")).
		WithArgs("group-1", "enroll-1", "enroll-2").
		WillReturnRows(rows)

	existing, err := repo.FilterExisting(context.Background(), "group-1", []string{"enroll-1", "enroll-2"})
	require.NoError(t, err)
	require.True(t, existing["enroll-1"])
	require.False(t, existing["enroll-2"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentGradeNoteExistsIsCaseInsensitive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LOWER(note) = LOWER($2)")).
		WithArgs("enroll-1", "final exam").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.GradeNoteExists(context.Background(), "enroll-1", "final exam")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentAddGradeMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollment_grades")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "enrollment_grades_enrollment_id_note_key"})

	err := repo.AddGrade(context.Background(), &models.Grade{
		EnrollmentID: "enroll-1",
		Note:         "Final Exam",
		Value:        9,
	})
	require.ErrorIs(t, err, ErrDuplicateNote)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentUpdateStatusUnknownID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2")).
		WithArgs("missing", models.EnrollmentStatusApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.EnrollmentStatusApproved)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
