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

type studentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByIdentity(ctx context.Context, documentID, email, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	SetActive(ctx context.Context, id string, active bool) error
}

// SaveStudentRequest is the payload for creating or updating a student.
type SaveStudentRequest struct {
	FirstName             string         `json:"first_name" validate:"required,max=120"`
	LastName              string         `json:"last_name" validate:"required,max=120"`
	DocumentID            string         `json:"document_id" validate:"required,max=32"`
	Email                 string         `json:"email" validate:"required,email"`
	Phone                 *string        `json:"phone,omitempty"`
	BirthDate             *time.Time     `json:"birth_date,omitempty"`
	Gender                *models.Gender `json:"gender,omitempty"`
	Address               *string        `json:"address,omitempty"`
	EmergencyContactName  *string        `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string        `json:"emergency_contact_phone,omitempty"`
}

// StudentService manages the student roster.
type StudentService struct {
	repo      studentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students matching the filter with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. Document and email are unique across
// the roster.
func (s *StudentService) Create(ctx context.Context, req SaveStudentRequest) (*models.Student, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByIdentity(ctx, req.DocumentID, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student identity")
	}
	if taken {
		return nil, appErrors.ErrDuplicateIdentifier
	}

	student := &models.Student{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		DocumentID:            req.DocumentID,
		Email:                 req.Email,
		Phone:                 req.Phone,
		BirthDate:             req.BirthDate,
		Gender:                req.Gender,
		Address:               req.Address,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		Active:                true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update changes a student's record.
func (s *StudentService) Update(ctx context.Context, id string, req SaveStudentRequest) (*models.Student, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByIdentity(ctx, req.DocumentID, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student identity")
	}
	if taken {
		return nil, appErrors.ErrDuplicateIdentifier
	}
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.DocumentID = req.DocumentID
	student.Email = req.Email
	student.Phone = req.Phone
	student.BirthDate = req.BirthDate
	student.Gender = req.Gender
	student.Address = req.Address
	student.EmergencyContactName = req.EmergencyContactName
	student.EmergencyContactPhone = req.EmergencyContactPhone
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// SetActive toggles a student's visibility flag. History stays intact.
func (s *StudentService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student state")
	}
	return nil
}

func (s *StudentService) validateRequest(req SaveStudentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if req.Gender != nil && !req.Gender.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported gender value")
	}
	return nil
}
