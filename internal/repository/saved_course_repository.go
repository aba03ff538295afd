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

// SavedCourseRepository provides database access for course bookmarks.
type SavedCourseRepository struct {
	db *sqlx.DB
}

// NewSavedCourseRepository creates a new instance of SavedCourseRepository.
func NewSavedCourseRepository(db *sqlx.DB) *SavedCourseRepository {
	return &SavedCourseRepository{db: db}
}

// ListByUser returns a user's bookmarks, newest first.
func (r *SavedCourseRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.SavedCourse, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`
		SELECT id, user_id, course_id, saved_at
		FROM saved_courses
		WHERE user_id = $1
		ORDER BY saved_at DESC
		LIMIT %d OFFSET %d`, pageSize, offset)

	var saved []models.SavedCourse
	if err := r.db.SelectContext(ctx, &saved, listQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("list saved courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM saved_courses WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count saved courses: %w", err)
	}

	return saved, total, nil
}

// Find returns the bookmark for a (user, course) pair.
func (r *SavedCourseRepository) Find(ctx context.Context, userID, courseID string) (*models.SavedCourse, error) {
	const query = `SELECT id, user_id, course_id, saved_at FROM saved_courses WHERE user_id = $1 AND course_id = $2 LIMIT 1`
	var saved models.SavedCourse
	if err := r.db.GetContext(ctx, &saved, query, userID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find saved course: %w", err)
	}
	return &saved, nil
}

// Create inserts a bookmark. The (user_id, course_id) pair is unique at the
// schema level.
func (r *SavedCourseRepository) Create(ctx context.Context, saved *models.SavedCourse) error {
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	saved.SavedAt = time.Now().UTC()

	const query = `
		INSERT INTO saved_courses (id, user_id, course_id, saved_at)
		VALUES (:id, :user_id, :course_id, :saved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, saved); err != nil {
		return fmt.Errorf("create saved course: %w", err)
	}
	return nil
}

// Delete removes a bookmark by (user, course) pair.
func (r *SavedCourseRepository) Delete(ctx context.Context, userID, courseID string) error {
	const query = `DELETE FROM saved_courses WHERE user_id = $1 AND course_id = $2`
	res, err := r.db.ExecContext(ctx, query, userID, courseID)
	if err != nil {
		return fmt.Errorf("delete saved course: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
