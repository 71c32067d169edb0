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

type programStore interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	SetActive(ctx context.Context, id string, active bool) error
}

// CreateProgramRequest is the payload for creating a program.
type CreateProgramRequest struct {
	Code        string              `json:"code" validate:"required,max=32"`
	Name        string              `json:"name" validate:"required,max=255"`
	Description *string             `json:"description,omitempty"`
	Type        models.ProgramType  `json:"type" validate:"required"`
	Level       models.ProgramLevel `json:"level" validate:"required"`
	Cost        float64             `json:"cost" validate:"gte=0"`
	PaymentType models.PaymentPlan  `json:"payment_type" validate:"required"`
}

// UpdateProgramRequest is the payload for updating a program.
type UpdateProgramRequest struct {
	Name        string              `json:"name" validate:"required,max=255"`
	Description *string             `json:"description,omitempty"`
	Type        models.ProgramType  `json:"type" validate:"required"`
	Level       models.ProgramLevel `json:"level" validate:"required"`
	Cost        float64             `json:"cost" validate:"gte=0"`
	PaymentType models.PaymentPlan  `json:"payment_type" validate:"required"`
}

// ProgramService manages the program catalog.
type ProgramService struct {
	repo      programStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs ProgramService.
func NewProgramService(repo programStore, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, validator: validate, logger: logger}
}

// List returns programs matching the filter with pagination metadata.
func (s *ProgramService) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	programs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one program by id.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// Create registers a new program. Codes are unique across the catalog.
func (s *ProgramService) Create(ctx context.Context, req CreateProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	if !req.Type.Valid() || !req.Level.Valid() || !req.PaymentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported program attributes")
	}
	taken, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check program code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateIdentifier, "program code already in use")
	}

	program := &models.Program{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Level:       req.Level,
		Cost:        req.Cost,
		PaymentType: req.PaymentType,
		Active:      true,
	}
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	return program, nil
}

// Update changes a program's mutable fields. The code is immutable; cost
// changes affect future debt derivation only through the stored cost.
func (s *ProgramService) Update(ctx context.Context, id string, req UpdateProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	if !req.Type.Valid() || !req.Level.Valid() || !req.PaymentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported program attributes")
	}
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	program.Name = req.Name
	program.Description = req.Description
	program.Type = req.Type
	program.Level = req.Level
	program.Cost = req.Cost
	program.PaymentType = req.PaymentType
	if err := s.repo.Update(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}
	return program, nil
}

// SetActive toggles a program's visibility flag.
func (s *ProgramService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program state")
	}
	return nil
}
