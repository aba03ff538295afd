package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadhub/portal-api/internal/models"
)

const intakeColumns = `id, user_id, type, status, full_name, phone_number, staff_id, student_id, department_id, content_id, description, created_at, updated_at`

// statusRankExpr surfaces actionable records first; within a status group the
// oldest record wins (FIFO moderation queue).
const statusRankExpr = `CASE status WHEN 'PENDING' THEN 0 WHEN 'REJECTED' THEN 1 WHEN 'APPROVED' THEN 2 ELSE 3 END`

// IntakeRepository provides database access for the moderation queue.
type IntakeRepository struct {
	db *sqlx.DB
}

// NewIntakeRepository creates a new instance of IntakeRepository.
func NewIntakeRepository(db *sqlx.DB) *IntakeRepository {
	return &IntakeRepository{db: db}
}

// Create inserts a new intake record and fills in id/timestamps.
func (r *IntakeRepository) Create(ctx context.Context, intake *models.Intake) error {
	if intake.ID == "" {
		intake.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if intake.CreatedAt.IsZero() {
		intake.CreatedAt = now
	}
	intake.UpdatedAt = now

	const query = `INSERT INTO intake (id, user_id, type, status, full_name, phone_number, staff_id, student_id, department_id, content_id, description, created_at, updated_at)
		VALUES (:id, :user_id, :type, :status, :full_name, :phone_number, :staff_id, :student_id, :department_id, :content_id, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, intake); err != nil {
		return fmt.Errorf("create intake: %w", err)
	}
	return nil
}

// FindByID returns an intake record by identifier.
func (r *IntakeRepository) FindByID(ctx context.Context, id string) (*models.Intake, error) {
	query := `SELECT ` + intakeColumns + ` FROM intake WHERE id = $1 LIMIT 1`
	var intake models.Intake
	if err := r.db.GetContext(ctx, &intake, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find intake by id: %w", err)
	}
	return &intake, nil
}

// Update persists all mutable fields of an intake record.
func (r *IntakeRepository) Update(ctx context.Context, intake *models.Intake) error {
	intake.UpdatedAt = time.Now().UTC()
	const query = `UPDATE intake SET type = :type, status = :status, full_name = :full_name, phone_number = :phone_number, staff_id = :staff_id, student_id = :student_id, department_id = :department_id, content_id = :content_id, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, intake); err != nil {
		return fmt.Errorf("update intake: %w", err)
	}
	return nil
}

// Delete removes an intake record.
func (r *IntakeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM intake WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete intake: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns intake records ordered by status rank then creation time.
func (r *IntakeRepository) List(ctx context.Context, filter models.IntakeFilter) ([]models.Intake, int, error) {
	baseQuery := `FROM intake WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, *filter.Type)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(staff_id) LIKE $%d OR LOWER(student_id) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s, created_at ASC LIMIT %d OFFSET %d", intakeColumns, baseQuery, statusRankExpr, pageSize, offset)

	var intakes []models.Intake
	if err := r.db.SelectContext(ctx, &intakes, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list intake: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count intake: %w", err)
	}

	return intakes, total, nil
}

// FindFirstByUser returns the queue-first intake for a user, or sql.ErrNoRows.
func (r *IntakeRepository) FindFirstByUser(ctx context.Context, userID string) (*models.Intake, error) {
	query := fmt.Sprintf(`SELECT %s FROM intake WHERE user_id = $1 ORDER BY %s, created_at ASC LIMIT 1`, intakeColumns, statusRankExpr)
	var intake models.Intake
	if err := r.db.GetContext(ctx, &intake, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find intake by user: %w", err)
	}
	return &intake, nil
}

// HasOpenComplaint reports whether any COMPLAIN record references the content,
// regardless of its moderation status.
func (r *IntakeRepository) HasOpenComplaint(ctx context.Context, contentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM intake WHERE content_id = $1 AND type = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, contentID, models.IntakeComplain); err != nil {
		return false, fmt.Errorf("check content complaint: %w", err)
	}
	return exists, nil
}
