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

// ClassroomRepository manages persistence for classroom records.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs a ClassroomRepository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

const classroomColumns = "id, name, type, capacity, location, platform, meeting_link, active, created_at, updated_at"

// List returns classrooms matching the provided filters.
func (r *ClassroomRepository) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error) {
	base := "FROM classrooms"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "name",
		"capacity":   "capacity",
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", classroomColumns, base, column, order, size, offset)

	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classrooms: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count classrooms: %w", err)
	}
	return classrooms, total, nil
}

// FindByID fetches a classroom by ID.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	var classroom models.Classroom
	query := fmt.Sprintf("SELECT %s FROM classrooms WHERE id = $1", classroomColumns)
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		return nil, err
	}
	return &classroom, nil
}

// Create inserts a new classroom record.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if classroom.CreatedAt.IsZero() {
		classroom.CreatedAt = now
	}
	classroom.UpdatedAt = now
	const query = `INSERT INTO classrooms (id, name, type, capacity, location, platform, meeting_link, active, created_at, updated_at)
        VALUES (:id, :name, :type, :capacity, :location, :platform, :meeting_link, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}
	return nil
}

// Update modifies an existing classroom.
func (r *ClassroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	classroom.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classrooms SET name = :name, type = :type, capacity = :capacity, location = :location,
        platform = :platform, meeting_link = :meeting_link, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("update classroom: %w", err)
	}
	return nil
}

// SetActive toggles the visibility flag.
func (r *ClassroomRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE classrooms SET active = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("toggle classroom: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
