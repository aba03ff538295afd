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

// CourseOfferingRepository provides database access for course offerings.
type CourseOfferingRepository struct {
	db *sqlx.DB
}

// NewCourseOfferingRepository creates a new instance of CourseOfferingRepository.
func NewCourseOfferingRepository(db *sqlx.DB) *CourseOfferingRepository {
	return &CourseOfferingRepository{db: db}
}

const offeringColumns = `id, course_id, department_id, year, semester, created_at, updated_at`

// List returns offerings matching the filter.
func (r *CourseOfferingRepository) List(ctx context.Context, filter models.CourseOfferingFilter) ([]models.CourseOffering, int, error) {
	baseQuery := `FROM course_offerings WHERE 1=1`
	var args []interface{}

	if filter.CourseID != "" {
		baseQuery += fmt.Sprintf(" AND course_id = $%d", len(args)+1)
		args = append(args, filter.CourseID)
	}
	if filter.DepartmentID != "" {
		baseQuery += fmt.Sprintf(" AND department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Year != nil {
		baseQuery += fmt.Sprintf(" AND year = $%d", len(args)+1)
		args = append(args, *filter.Year)
	}
	if filter.Semester != nil {
		baseQuery += fmt.Sprintf(" AND semester = $%d", len(args)+1)
		args = append(args, *filter.Semester)
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY year DESC, semester DESC LIMIT %d OFFSET %d", offeringColumns, baseQuery, pageSize, offset)

	var offerings []models.CourseOffering
	if err := r.db.SelectContext(ctx, &offerings, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list course offerings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count course offerings: %w", err)
	}

	return offerings, total, nil
}

// FindByID returns an offering by identifier.
func (r *CourseOfferingRepository) FindByID(ctx context.Context, id string) (*models.CourseOffering, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_offerings WHERE id = $1 LIMIT 1`, offeringColumns)
	var offering models.CourseOffering
	if err := r.db.GetContext(ctx, &offering, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course offering by id: %w", err)
	}
	return &offering, nil
}

// Create inserts a new offering.
func (r *CourseOfferingRepository) Create(ctx context.Context, offering *models.CourseOffering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	offering.CreatedAt = now
	offering.UpdatedAt = now

	const query = `
		INSERT INTO course_offerings (id, course_id, department_id, year, semester, created_at, updated_at)
		VALUES (:id, :course_id, :department_id, :year, :semester, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("create course offering: %w", err)
	}
	return nil
}

// Update persists offering changes.
func (r *CourseOfferingRepository) Update(ctx context.Context, offering *models.CourseOffering) error {
	offering.UpdatedAt = time.Now().UTC()
	const query = `
		UPDATE course_offerings
		SET course_id = :course_id, department_id = :department_id, year = :year,
			semester = :semester, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("update course offering: %w", err)
	}
	return nil
}

// Delete removes an offering.
func (r *CourseOfferingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM course_offerings WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete course offering: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AudienceUserIDs returns the ids of active users whose department, year and
// semester match any offering of the given course.
func (r *CourseOfferingRepository) AudienceUserIDs(ctx context.Context, courseID string) ([]string, error) {
	const query = `
		SELECT DISTINCT u.id
		FROM users u
		JOIN course_offerings co
			ON co.department_id = u.department_id
			AND co.year = u.year
			AND co.semester = u.semester
		WHERE co.course_id = $1 AND u.is_active = TRUE`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, fmt.Errorf("course audience: %w", err)
	}
	return ids, nil
}
