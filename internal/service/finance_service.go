package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edukit/academia-api/internal/models"
	"github.com/edukit/academia-api/internal/repository"
	appErrors "github.com/edukit/academia-api/pkg/errors"
)

type enrollmentStore interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	ListByGroup(ctx context.Context, groupID string) ([]models.EnrollmentDetail, error)
	ListGrades(ctx context.Context, enrollmentID string) ([]models.Grade, error)
	GradeNoteExists(ctx context.Context, enrollmentID, note string) (bool, error)
	AddGrade(ctx context.Context, grade *models.Grade) error
}

type paymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListRecent(ctx context.Context, limit int) ([]models.PaymentDetail, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type groupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

// EnrollStudentRequest describes enrollment creation payload.
type EnrollStudentRequest struct {
	StudentID string `json:"studentId" validate:"required,uuid4"`
	GroupID   string `json:"groupId" validate:"required,uuid4"`
}

// RecordPaymentRequest describes a payment against an enrollment.
type RecordPaymentRequest struct {
	EnrollmentID string               `json:"enrollmentId" validate:"required,uuid4"`
	Amount       float64              `json:"amount" validate:"required,gt=0"`
	Method       models.PaymentMethod `json:"method" validate:"required"`
}

// RecordGradeRequest appends a scored note to an enrollment.
type RecordGradeRequest struct {
	EnrollmentID string  `json:"enrollmentId" validate:"required,uuid4"`
	Note         string  `json:"note" validate:"required"`
	Value        float64 `json:"value" validate:"gte=0"`
}

// FinanceService manages the student-group join entity: enrollment,
// payments and grades.
type FinanceService struct {
	enrollments enrollmentStore
	payments    paymentStore
	students    studentReader
	groups      groupReader
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	recentLimit int
}

// NewFinanceService constructs FinanceService.
func NewFinanceService(enrollments enrollmentStore, payments paymentStore, students studentReader, groups groupReader,
	cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, recentLimit int) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &FinanceService{
		enrollments: enrollments,
		payments:    payments,
		students:    students,
		groups:      groups,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		recentLimit: recentLimit,
	}
}

// Enroll registers a student into a group. The (student, group) pair is
// unique; a second enrollment for the same pair is rejected.
func (s *FinanceService) Enroll(ctx context.Context, req EnrollStudentRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student inactive")
	}
	group, err := s.groups.FindByID(ctx, req.GroupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if group.Status != models.GroupStatusActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "group is not active")
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, GroupID: req.GroupID, Status: models.EnrollmentStatusEnrolled}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicatePair) {
			return nil, appErrors.ErrDuplicateEnrollment
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.invalidateDashboard(ctx)

	detail, err := s.enrollments.FindDetailByID(ctx, enrollment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment detail")
	}
	return detail, nil
}

// RecordPayment persists a payment and the matching total_paid increment
// atomically. The enrollment's running total therefore always equals the
// sum of its payments, also under concurrent submissions.
func (s *FinanceService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if !req.Method.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported payment method")
	}

	payment := &models.Payment{
		EnrollmentID: req.EnrollmentID,
		Amount:       req.Amount,
		Method:       req.Method,
		PaidAt:       time.Now().UTC(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	s.metrics.RecordPayment()
	s.invalidateDashboard(ctx)

	return payment, nil
}

// RecordGrade appends a scored note to an enrollment. Duplicate note
// labels are rejected here, not left to clients.
func (s *FinanceService) RecordGrade(ctx context.Context, req RecordGradeRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if _, err := s.enrollments.FindByID(ctx, req.EnrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	note := strings.TrimSpace(req.Note)
	if note == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "note is required")
	}
	exists, err := s.enrollments.GradeNoteExists(ctx, req.EnrollmentID, note)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check grade note")
	}
	if exists {
		return nil, appErrors.ErrDuplicateGrade
	}

	grade := &models.Grade{EnrollmentID: req.EnrollmentID, Note: note, Value: req.Value}
	if err := s.enrollments.AddGrade(ctx, grade); err != nil {
		if errors.Is(err, repository.ErrDuplicateNote) {
			return nil, appErrors.ErrDuplicateGrade
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}

	detail, err := s.enrollments.FindDetailByID(ctx, req.EnrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment detail")
	}
	grades, err := s.enrollments.ListGrades(ctx, req.EnrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	detail.Grades = grades
	return detail, nil
}

// GroupFinancials returns every enrollment of a group with student
// identity and derived balance information.
func (s *FinanceService) GroupFinancials(ctx context.Context, groupID string) ([]models.EnrollmentDetail, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	enrollments, err := s.enrollments.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group enrollments")
	}
	return enrollments, nil
}

// RecentTransactions returns the latest payments, newest first, populated
// for display.
func (s *FinanceService) RecentTransactions(ctx context.Context) ([]models.PaymentDetail, error) {
	payments, err := s.payments.ListRecent(ctx, s.recentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list transactions")
	}
	return payments, nil
}

func (s *FinanceService) invalidateDashboard(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
