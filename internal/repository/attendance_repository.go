package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edukit/academia-api/internal/models"
)

// AttendanceRepository stores per-day attendance entries on enrollments.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// UpsertDay records attendance for one enrollment and calendar day. A
// re-take of an already-recorded day overwrites the status and keeps the
// original recorded_at timestamp. Returns true when a new row was
// created, false when an existing day was updated.
func (r *AttendanceRepository) UpsertDay(ctx context.Context, entry *models.AttendanceEntry) (bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	entry.Day = normalizeDay(entry.Day)

	const query = `INSERT INTO enrollment_attendance (id, enrollment_id, day, recorded_at, status)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (enrollment_id, day) DO UPDATE SET status = EXCLUDED.status
        RETURNING (xmax = 0)`
	var inserted bool
	err := r.db.GetContext(ctx, &inserted, query, entry.ID, entry.EnrollmentID, entry.Day, entry.RecordedAt, entry.Status)
	if err != nil {
		return false, fmt.Errorf("upsert attendance: %w", err)
	}
	return inserted, nil
}

// ListByEnrollment returns the attendance history of an enrollment in
// day order.
func (r *AttendanceRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.AttendanceEntry, error) {
	const query = `SELECT id, enrollment_id, day, recorded_at, status FROM enrollment_attendance WHERE enrollment_id = $1 ORDER BY day`
	var entries []models.AttendanceEntry
	if err := r.db.SelectContext(ctx, &entries, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return entries, nil
}

// FindDay returns the entry for one enrollment and calendar day, or
// sql.ErrNoRows.
func (r *AttendanceRepository) FindDay(ctx context.Context, enrollmentID string, day time.Time) (*models.AttendanceEntry, error) {
	const query = `SELECT id, enrollment_id, day, recorded_at, status FROM enrollment_attendance WHERE enrollment_id = $1 AND day = $2`
	var entry models.AttendanceEntry
	if err := r.db.GetContext(ctx, &entry, query, enrollmentID, normalizeDay(day)); err != nil {
		return nil, err
	}
	return &entry, nil
}

// normalizeDay strips the time-of-day in UTC so a day compares equal no
// matter when during the day it was captured.
func normalizeDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
