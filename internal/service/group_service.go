package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edukit/academia-api/internal/models"
	appErrors "github.com/edukit/academia-api/pkg/errors"
)

type groupStore interface {
	List(ctx context.Context, filter models.GroupFilter) ([]models.GroupDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Group, error)
	FindDetailByID(ctx context.Context, id string) (*models.GroupDetail, error)
	ListSchedule(ctx context.Context, groupID string) ([]models.ScheduleSlot, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	UpdateStatus(ctx context.Context, id string, status models.GroupStatus) error
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type classroomReader interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

type programReader interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// ScheduleSlotRequest is one recurring session in a group payload.
type ScheduleSlotRequest struct {
	Day       models.Weekday `json:"day" validate:"required"`
	StartTime string         `json:"start_time" validate:"required"`
	EndTime   string         `json:"end_time" validate:"required"`
}

// SaveGroupRequest is the payload for creating or updating a group.
type SaveGroupRequest struct {
	Code        string                `json:"code" validate:"required,max=32"`
	ProgramID   string                `json:"program_id" validate:"required,uuid4"`
	TeacherID   string                `json:"teacher_id" validate:"required,uuid4"`
	ClassroomID string                `json:"classroom_id" validate:"required,uuid4"`
	StartDate   time.Time             `json:"start_date" validate:"required"`
	EndDate     time.Time             `json:"end_date" validate:"required"`
	Schedule    []ScheduleSlotRequest `json:"schedule" validate:"required,min=1,dive"`
}

var timeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// GroupService manages cohorts and their weekly schedules.
type GroupService struct {
	repo       groupStore
	programs   programReader
	teachers   teacherReader
	classrooms classroomReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewGroupService constructs GroupService.
func NewGroupService(repo groupStore, programs programReader, teachers teacherReader, classrooms classroomReader,
	validate *validator.Validate, logger *zap.Logger) *GroupService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{
		repo:       repo,
		programs:   programs,
		teachers:   teachers,
		classrooms: classrooms,
		validator:  validate,
		logger:     logger,
	}
}

// List returns groups matching the filter with pagination metadata.
func (s *GroupService) List(ctx context.Context, filter models.GroupFilter) ([]models.GroupDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unsupported group status")
	}
	groups, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	return groups, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one group with its schedule and reference names.
func (s *GroupService) Get(ctx context.Context, id string) (*models.GroupDetail, error) {
	group, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	schedule, err := s.repo.ListSchedule(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group schedule")
	}
	group.Schedule = schedule
	return group, nil
}

// Create opens a new group over existing, active references.
func (s *GroupService) Create(ctx context.Context, req SaveGroupRequest) (*models.GroupDetail, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateIdentifier, "group code already in use")
	}

	group := &models.Group{
		Code:        req.Code,
		ProgramID:   req.ProgramID,
		TeacherID:   req.TeacherID,
		ClassroomID: req.ClassroomID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      models.GroupStatusActive,
		Schedule:    scheduleFromRequest(req.Schedule),
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	return s.Get(ctx, group.ID)
}

// Update replaces a group's references, dates and schedule.
func (s *GroupService) Update(ctx context.Context, id string, req SaveGroupRequest) (*models.GroupDetail, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateIdentifier, "group code already in use")
	}

	existing.Code = req.Code
	existing.ProgramID = req.ProgramID
	existing.TeacherID = req.TeacherID
	existing.ClassroomID = req.ClassroomID
	existing.StartDate = req.StartDate
	existing.EndDate = req.EndDate
	existing.Schedule = scheduleFromRequest(req.Schedule)
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update group")
	}
	return s.Get(ctx, id)
}

// UpdateStatus moves a group to a new lifecycle state. Finished and
// cancelled groups stop accepting enrollments but keep their history.
func (s *GroupService) UpdateStatus(ctx context.Context, id string, status models.GroupStatus) (*models.GroupDetail, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported group status")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update group status")
	}
	return s.Get(ctx, id)
}

func (s *GroupService) validateRequest(req SaveGroupRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}
	if !req.EndDate.After(req.StartDate) {
		return appErrors.Clone(appErrors.ErrValidation, "end date must be after start date")
	}
	for _, slot := range req.Schedule {
		if !slot.Day.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "unsupported schedule day")
		}
		if !timeOfDay.MatchString(slot.StartTime) || !timeOfDay.MatchString(slot.EndTime) {
			return appErrors.Clone(appErrors.ErrValidation, "schedule times must be HH:MM")
		}
		if slot.EndTime <= slot.StartTime {
			return appErrors.Clone(appErrors.ErrValidation, "schedule end must be after start")
		}
	}
	return nil
}

func (s *GroupService) checkReferences(ctx context.Context, req SaveGroupRequest) error {
	program, err := s.programs.FindByID(ctx, req.ProgramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	if !program.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "program inactive")
	}
	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher inactive")
	}
	classroom, err := s.classrooms.FindByID(ctx, req.ClassroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if !classroom.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "classroom inactive")
	}
	return nil
}

func scheduleFromRequest(slots []ScheduleSlotRequest) []models.ScheduleSlot {
	out := make([]models.ScheduleSlot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, models.ScheduleSlot{
			Day:       slot.Day,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	return out
}
