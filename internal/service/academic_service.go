package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edukit/academia-api/internal/models"
	appErrors "github.com/edukit/academia-api/pkg/errors"
)

type attendanceStore interface {
	UpsertDay(ctx context.Context, entry *models.AttendanceEntry) (bool, error)
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.AttendanceEntry, error)
}

type enrollmentAcademicStore interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	FilterExisting(ctx context.Context, groupID string, enrollmentIDs []string) (map[string]bool, error)
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	ListGrades(ctx context.Context, enrollmentID string) ([]models.Grade, error)
}

// AttendanceMark is one enrollment's status inside a roll call.
type AttendanceMark struct {
	EnrollmentID string                  `json:"enrollmentId" validate:"required,uuid4"`
	Status       models.AttendanceStatus `json:"status" validate:"required"`
}

// TakeAttendanceRequest is a full-group roll call for one calendar day.
type TakeAttendanceRequest struct {
	GroupID string           `json:"groupId" validate:"required,uuid4"`
	Date    *time.Time       `json:"date,omitempty"`
	Entries []AttendanceMark `json:"records" validate:"required,min=1,dive"`
}

// AttendanceFailure names one entry that could not be applied and why.
type AttendanceFailure struct {
	EnrollmentID string `json:"enrollmentId"`
	Reason       string `json:"reason"`
}

// AttendanceResult summarises a roll call. Failed entries are itemised
// rather than silently skipped; the rest of the batch still applies.
type AttendanceResult struct {
	Date    time.Time           `json:"date"`
	Updated int                 `json:"updated"`
	Created int                 `json:"created"`
	Failed  []AttendanceFailure `json:"failed"`
}

// UpdateEnrollmentStatusRequest moves an enrollment to a new lifecycle state.
type UpdateEnrollmentStatusRequest struct {
	EnrollmentID string                  `json:"enrollmentId" validate:"required,uuid4"`
	Status       models.EnrollmentStatus `json:"status" validate:"required"`
}

// AcademicService covers attendance capture and enrollment lifecycle.
type AcademicService struct {
	attendance  attendanceStore
	enrollments enrollmentAcademicStore
	groups      groupReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAcademicService constructs AcademicService.
func NewAcademicService(attendance attendanceStore, enrollments enrollmentAcademicStore, groups groupReader,
	validate *validator.Validate, logger *zap.Logger) *AcademicService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicService{
		attendance:  attendance,
		enrollments: enrollments,
		groups:      groups,
		validator:   validate,
		logger:      logger,
	}
}

// TakeAttendance records one day of attendance for a group. A re-take of
// the same day overwrites each entry's status in place, so the last
// submission wins and no duplicate day rows accumulate.
func (s *AcademicService) TakeAttendance(ctx context.Context, req TakeAttendanceRequest) (*AttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	for _, mark := range req.Entries {
		if !mark.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported attendance status")
		}
	}
	if _, err := s.groups.FindByID(ctx, req.GroupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}

	day := time.Now().UTC()
	if req.Date != nil {
		day = *req.Date
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	ids := make([]string, 0, len(req.Entries))
	for _, mark := range req.Entries {
		ids = append(ids, mark.EnrollmentID)
	}
	known, err := s.enrollments.FilterExisting(ctx, req.GroupID, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve enrollments")
	}

	result := &AttendanceResult{Date: day, Failed: []AttendanceFailure{}}
	for _, mark := range req.Entries {
		if !known[mark.EnrollmentID] {
			result.Failed = append(result.Failed, AttendanceFailure{
				EnrollmentID: mark.EnrollmentID,
				Reason:       "enrollment not found in group",
			})
			continue
		}
		entry := &models.AttendanceEntry{
			EnrollmentID: mark.EnrollmentID,
			Day:          day,
			RecordedAt:   time.Now().UTC(),
			Status:       mark.Status,
		}
		inserted, err := s.attendance.UpsertDay(ctx, entry)
		if err != nil {
			s.logger.Error("attendance upsert failed",
				zap.String("enrollment_id", mark.EnrollmentID), zap.Error(err))
			result.Failed = append(result.Failed, AttendanceFailure{
				EnrollmentID: mark.EnrollmentID,
				Reason:       "could not persist attendance",
			})
			continue
		}
		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

// UpdateEnrollmentStatus sets an enrollment's lifecycle state. Any
// transition is permitted; history (payments, grades, attendance) is kept.
func (s *AcademicService) UpdateEnrollmentStatus(ctx context.Context, req UpdateEnrollmentStatusRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported enrollment status")
	}
	if err := s.enrollments.UpdateStatus(ctx, req.EnrollmentID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}
	detail, err := s.enrollments.FindDetailByID(ctx, req.EnrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment detail")
	}
	return detail, nil
}

// EnrollmentRecord assembles one enrollment's full academic picture:
// identity, balance, grades and attendance sheet.
func (s *AcademicService) EnrollmentRecord(ctx context.Context, enrollmentID string) (*models.EnrollmentDetail, error) {
	detail, err := s.enrollments.FindDetailByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment detail")
	}
	grades, err := s.enrollments.ListGrades(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	attendance, err := s.attendance.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	detail.Grades = grades
	detail.Attendance = attendance
	return detail, nil
}
