package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadhub/portal-api/internal/models"
)

// CourseAssignmentRepository provides database access for lecturer-course links.
type CourseAssignmentRepository struct {
	db *sqlx.DB
}

// NewCourseAssignmentRepository creates a new instance of CourseAssignmentRepository.
func NewCourseAssignmentRepository(db *sqlx.DB) *CourseAssignmentRepository {
	return &CourseAssignmentRepository{db: db}
}

const assignmentColumns = `id, user_id, course_id, created_at, updated_at`

// List returns assignments, optionally scoped to a user or course.
func (r *CourseAssignmentRepository) List(ctx context.Context, userID, courseID string, page, pageSize int) ([]models.CourseAssignment, int, error) {
	baseQuery := `FROM course_assignments WHERE 1=1`
	var args []interface{}

	if userID != "" {
		baseQuery += fmt.Sprintf(" AND user_id = $%d", len(args)+1)
		args = append(args, userID)
	}
	if courseID != "" {
		baseQuery += fmt.Sprintf(" AND course_id = $%d", len(args)+1)
		args = append(args, courseID)
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", assignmentColumns, baseQuery, pageSize, offset)

	var assignments []models.CourseAssignment
	if err := r.db.SelectContext(ctx, &assignments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list course assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count course assignments: %w", err)
	}

	return assignments, total, nil
}

// FindByID returns an assignment by identifier.
func (r *CourseAssignmentRepository) FindByID(ctx context.Context, id string) (*models.CourseAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_assignments WHERE id = $1 LIMIT 1`, assignmentColumns)
	var assignment models.CourseAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course assignment by id: %w", err)
	}
	return &assignment, nil
}

// Exists reports whether the (user, course) pair is already linked.
func (r *CourseAssignmentRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM course_assignments WHERE user_id = $1 AND course_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, courseID); err != nil {
		return false, fmt.Errorf("check course assignment: %w", err)
	}
	return exists, nil
}

// Create inserts a new assignment.
func (r *CourseAssignmentRepository) Create(ctx context.Context, assignment *models.CourseAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	const query = `
		INSERT INTO course_assignments (id, user_id, course_id, created_at, updated_at)
		VALUES (:id, :user_id, :course_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create course assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *CourseAssignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM course_assignments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete course assignment: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
