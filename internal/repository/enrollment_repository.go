package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edukit/academia-api/internal/models"
)

// ErrDuplicatePair is returned when the (student, group) pair already has
// an enrollment.
var ErrDuplicatePair = fmt.Errorf("enrollment pair already exists")

// ErrDuplicateNote is returned when a grade note label is already recorded
// for the enrollment.
var ErrDuplicateNote = fmt.Errorf("grade note already exists")

// EnrollmentRepository handles persistence of enrollments and their grades.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentDetailColumns = `e.id, e.student_id, e.group_id, e.status, e.total_paid, e.created_at, e.updated_at,
        s.first_name AS student_first_name, s.last_name AS student_last_name, s.email AS student_email,
        g.code AS group_code, p.name AS program_name, p.cost AS program_cost`

const enrollmentDetailJoins = `FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN groups g ON g.id = e.group_id
        JOIN programs p ON p.id = g.program_id`

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, group_id, status, total_paid, created_at, updated_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with student and program context.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE e.id = $1", enrollmentDetailColumns, enrollmentDetailJoins)
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create persists a new enrollment. A duplicate (student, group) pair
// surfaces as ErrDuplicatePair.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusEnrolled
	}
	const query = `INSERT INTO enrollments (id, student_id, group_id, status, total_paid, created_at, updated_at)
        VALUES (:id, :student_id, :group_id, :status, :total_paid, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		if UniqueViolation(err, "") {
			return ErrDuplicatePair
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus sets the enrollment status. No transition table is
// enforced; any status may replace any other.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByGroup returns all enrollments of a group with student identity
// and program cost, ready for balance display.
func (r *EnrollmentRepository) ListByGroup(ctx context.Context, groupID string) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE e.group_id = $1 ORDER BY s.last_name, s.first_name", enrollmentDetailColumns, enrollmentDetailJoins)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, groupID); err != nil {
		return nil, fmt.Errorf("list group enrollments: %w", err)
	}
	return enrollments, nil
}

// FilterExisting returns the subset of enrollment IDs that exist and
// belong to the given group.
func (r *EnrollmentRepository) FilterExisting(ctx context.Context, groupID string, enrollmentIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(enrollmentIDs))
	if len(enrollmentIDs) == 0 {
		return existing, nil
	}
	placeholders := make([]string, len(enrollmentIDs))
	args := make([]interface{}, 0, len(enrollmentIDs)+1)
	args = append(args, groupID)
	for i, id := range enrollmentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	query := fmt.Sprintf("SELECT id FROM enrollments WHERE group_id = $1 AND id IN (%s)", strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter enrollments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan enrollment id: %w", err)
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// ListGrades returns the grades of an enrollment in insertion order.
func (r *EnrollmentRepository) ListGrades(ctx context.Context, enrollmentID string) ([]models.Grade, error) {
	const query = `SELECT id, enrollment_id, note, value, created_at FROM enrollment_grades WHERE enrollment_id = $1 ORDER BY created_at`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// GradeNoteExists reports whether the enrollment already carries a grade
// with the given note label, compared case-insensitively.
func (r *EnrollmentRepository) GradeNoteExists(ctx context.Context, enrollmentID, note string) (bool, error) {
	const query = `SELECT 1 FROM enrollment_grades WHERE enrollment_id = $1 AND LOWER(note) = LOWER($2) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, enrollmentID, note); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check grade note: %w", err)
	}
	return true, nil
}

// AddGrade appends a grade to an enrollment. The unique constraint backs
// up the service-level duplicate check; a violation surfaces as
// ErrDuplicateNote.
func (r *EnrollmentRepository) AddGrade(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollment_grades (id, enrollment_id, note, value, created_at)
        VALUES (:id, :enrollment_id, :note, :value, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		if UniqueViolation(err, "") {
			return ErrDuplicateNote
		}
		return fmt.Errorf("add grade: %w", err)
	}
	return nil
}
