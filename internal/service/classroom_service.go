package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edukit/academia-api/internal/models"
	appErrors "github.com/edukit/academia-api/pkg/errors"
)

type classroomStore interface {
	List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	Update(ctx context.Context, classroom *models.Classroom) error
	SetActive(ctx context.Context, id string, active bool) error
}

// SaveClassroomRequest is the payload for creating or updating a classroom.
type SaveClassroomRequest struct {
	Name        string               `json:"name" validate:"required,max=120"`
	Type        models.ClassroomType `json:"type" validate:"required"`
	Capacity    int                  `json:"capacity" validate:"required,gt=0"`
	Location    *string              `json:"location,omitempty"`
	Platform    *string              `json:"platform,omitempty"`
	MeetingLink *string              `json:"meeting_link,omitempty"`
}

// ClassroomService manages teaching spaces, physical and virtual.
type ClassroomService struct {
	repo      classroomStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassroomService constructs ClassroomService.
func NewClassroomService(repo classroomStore, validate *validator.Validate, logger *zap.Logger) *ClassroomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{repo: repo, validator: validate, logger: logger}
}

// List returns classrooms matching the filter with pagination metadata.
func (s *ClassroomService) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	classrooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
	}
	return classrooms, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one classroom by id.
func (s *ClassroomService) Get(ctx context.Context, id string) (*models.Classroom, error) {
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return classroom, nil
}

// Create registers a new classroom. Virtual rooms need a platform,
// physical ones a location.
func (s *ClassroomService) Create(ctx context.Context, req SaveClassroomRequest) (*models.Classroom, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	classroom := &models.Classroom{
		Name:        req.Name,
		Type:        req.Type,
		Capacity:    req.Capacity,
		Location:    req.Location,
		Platform:    req.Platform,
		MeetingLink: req.MeetingLink,
		Active:      true,
	}
	if err := s.repo.Create(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create classroom")
	}
	return classroom, nil
}

// Update changes a classroom's record.
func (s *ClassroomService) Update(ctx context.Context, id string, req SaveClassroomRequest) (*models.Classroom, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	classroom, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	classroom.Name = req.Name
	classroom.Type = req.Type
	classroom.Capacity = req.Capacity
	classroom.Location = req.Location
	classroom.Platform = req.Platform
	classroom.MeetingLink = req.MeetingLink
	if err := s.repo.Update(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update classroom")
	}
	return classroom, nil
}

// SetActive toggles a classroom's availability flag.
func (s *ClassroomService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update classroom state")
	}
	return nil
}

func (s *ClassroomService) validateRequest(req SaveClassroomRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}
	if !req.Type.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported classroom type")
	}
	if req.Type == models.ClassroomTypeVirtual && (req.Platform == nil || *req.Platform == "") {
		return appErrors.Clone(appErrors.ErrValidation, "virtual classrooms require a platform")
	}
	if req.Type == models.ClassroomTypePhysical && (req.Location == nil || *req.Location == "") {
		return appErrors.Clone(appErrors.ErrValidation, "physical classrooms require a location")
	}
	return nil
}
