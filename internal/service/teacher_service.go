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

type teacherStore interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByIdentity(ctx context.Context, documentID, email, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	SetActive(ctx context.Context, id string, active bool) error
}

// SaveTeacherRequest is the payload for creating or updating a teacher.
type SaveTeacherRequest struct {
	FirstName  string     `json:"first_name" validate:"required,max=120"`
	LastName   string     `json:"last_name" validate:"required,max=120"`
	DocumentID string     `json:"document_id" validate:"required,max=32"`
	Email      string     `json:"email" validate:"required,email"`
	Phone      *string    `json:"phone,omitempty"`
	Speciality string     `json:"speciality" validate:"required,max=120"`
	Degree     *string    `json:"degree,omitempty"`
	Address    *string    `json:"address,omitempty"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
}

// TeacherService manages the instructor roster.
type TeacherService struct {
	repo      teacherStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs TeacherService.
func NewTeacherService(repo teacherStore, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns teachers matching the filter with pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher. Document and email are unique.
func (s *TeacherService) Create(ctx context.Context, req SaveTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	taken, err := s.repo.ExistsByIdentity(ctx, req.DocumentID, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher identity")
	}
	if taken {
		return nil, appErrors.ErrDuplicateIdentifier
	}

	teacher := &models.Teacher{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		DocumentID: req.DocumentID,
		Email:      req.Email,
		Phone:      req.Phone,
		Speciality: req.Speciality,
		Degree:     req.Degree,
		Address:    req.Address,
		HireDate:   req.HireDate,
		Active:     true,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Update changes a teacher's record.
func (s *TeacherService) Update(ctx context.Context, id string, req SaveTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByIdentity(ctx, req.DocumentID, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher identity")
	}
	if taken {
		return nil, appErrors.ErrDuplicateIdentifier
	}
	teacher.FirstName = req.FirstName
	teacher.LastName = req.LastName
	teacher.DocumentID = req.DocumentID
	teacher.Email = req.Email
	teacher.Phone = req.Phone
	teacher.Speciality = req.Speciality
	teacher.Degree = req.Degree
	teacher.Address = req.Address
	teacher.HireDate = req.HireDate
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// SetActive toggles a teacher's availability flag.
func (s *TeacherService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher state")
	}
	return nil
}
