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

// ProgramRepository manages persistence for program records.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs a ProgramRepository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = "id, code, name, description, type, level, cost, payment_type, active, created_at, updated_at"

// List returns programs matching the provided filters.
func (r *ProgramRepository) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error) {
	base := "FROM programs"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"code":       "code",
		"name":       "name",
		"cost":       "cost",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", programColumns, base, column, order, size, offset)

	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list programs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count programs: %w", err)
	}
	return programs, total, nil
}

// FindByID fetches a program by ID.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	var program models.Program
	query := fmt.Sprintf("SELECT %s FROM programs WHERE id = $1", programColumns)
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// ExistsByCode checks whether a program code is in use, optionally excluding an ID.
func (r *ProgramRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM programs WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check program code: %w", err)
	}
	return true, nil
}

// Create inserts a new program record.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if program.CreatedAt.IsZero() {
		program.CreatedAt = now
	}
	program.UpdatedAt = now
	const query = `INSERT INTO programs (id, code, name, description, type, level, cost, payment_type, active, created_at, updated_at)
        VALUES (:id, :code, :name, :description, :type, :level, :cost, :payment_type, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// Update modifies an existing program.
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program) error {
	program.UpdatedAt = time.Now().UTC()
	const query = `UPDATE programs SET code = :code, name = :name, description = :description, type = :type,
        level = :level, cost = :cost, payment_type = :payment_type, active = :active, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	return nil
}

// SetActive toggles the visibility flag without touching any other field.
func (r *ProgramRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE programs SET active = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("toggle program: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
