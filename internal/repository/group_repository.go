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

// GroupRepository manages persistence for groups and their schedules.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

const groupDetailColumns = `g.id, g.code, g.program_id, g.teacher_id, g.classroom_id, g.start_date, g.end_date, g.status,
        g.created_at, g.updated_at,
        p.name AS program_name, p.cost AS program_cost,
        t.first_name || ' ' || t.last_name AS teacher_name,
        c.name AS classroom_name`

const groupDetailJoins = `FROM groups g
        JOIN programs p ON p.id = g.program_id
        JOIN teachers t ON t.id = g.teacher_id
        JOIN classrooms c ON c.id = g.classroom_id`

// List returns groups with display names, filtered and paginated.
func (r *GroupRepository) List(ctx context.Context, filter models.GroupFilter) ([]models.GroupDetail, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("g.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("g.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("g.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(g.code) LIKE $%d OR LOWER(p.name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := fmt.Sprintf("%s WHERE %s", groupDetailJoins, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"code":       "g.code",
		"start_date": "g.start_date",
		"created_at": "g.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "g.created_at"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", groupDetailColumns, base, column, order, size, offset)

	var groups []models.GroupDetail
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list groups: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}
	return groups, total, nil
}

// FindByID fetches a group (without schedule) by ID.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, code, program_id, teacher_id, classroom_id, start_date, end_date, status, created_at, updated_at
        FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// FindDetailByID fetches a group with display names and schedule.
func (r *GroupRepository) FindDetailByID(ctx context.Context, id string) (*models.GroupDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE g.id = $1", groupDetailColumns, groupDetailJoins)
	var detail models.GroupDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	schedule, err := r.ListSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Schedule = schedule
	return &detail, nil
}

// ListSchedule returns the recurring slots of a group.
func (r *GroupRepository) ListSchedule(ctx context.Context, groupID string) ([]models.ScheduleSlot, error) {
	const query = `SELECT id, group_id, day, start_time, end_time FROM group_schedules WHERE group_id = $1 ORDER BY day, start_time`
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, groupID); err != nil {
		return nil, fmt.Errorf("list group schedule: %w", err)
	}
	return slots, nil
}

// ExistsByCode checks whether a group code is in use, optionally excluding an ID.
func (r *GroupRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM groups WHERE code = $1"
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
		return false, fmt.Errorf("check group code: %w", err)
	}
	return true, nil
}

// Create inserts a group and its schedule slots in one transaction.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	if group.Status == "" {
		group.Status = models.GroupStatusActive
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create group: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO groups (id, code, program_id, teacher_id, classroom_id, start_date, end_date, status, created_at, updated_at)
        VALUES (:id, :code, :program_id, :teacher_id, :classroom_id, :start_date, :end_date, :status, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}

	if err := insertSchedule(ctx, tx, group.ID, group.Schedule); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create group: %w", err)
	}
	return nil
}

// Update modifies a group and replaces its schedule.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update group: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE groups SET code = :code, program_id = :program_id, teacher_id = :teacher_id,
        classroom_id = :classroom_id, start_date = :start_date, end_date = :end_date, status = :status,
        updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM group_schedules WHERE group_id = $1", group.ID); err != nil {
		return fmt.Errorf("clear group schedule: %w", err)
	}
	if err := insertSchedule(ctx, tx, group.ID, group.Schedule); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update group: %w", err)
	}
	return nil
}

// UpdateStatus sets the lifecycle status of a group.
func (r *GroupRepository) UpdateStatus(ctx context.Context, id string, status models.GroupStatus) error {
	const query = `UPDATE groups SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update group status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus counts groups in the given status.
func (r *GroupRepository) CountByStatus(ctx context.Context, status models.GroupStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM groups WHERE status = $1", status); err != nil {
		return 0, fmt.Errorf("count groups: %w", err)
	}
	return total, nil
}

func insertSchedule(ctx context.Context, tx *sqlx.Tx, groupID string, slots []models.ScheduleSlot) error {
	const query = `INSERT INTO group_schedules (id, group_id, day, start_time, end_time)
        VALUES (:id, :group_id, :day, :start_time, :end_time)`
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		slots[i].GroupID = groupID
		if _, err := tx.NamedExecContext(ctx, query, slots[i]); err != nil {
			return fmt.Errorf("insert schedule slot: %w", err)
		}
	}
	return nil
}
