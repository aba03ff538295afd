package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
)

type savedCourseRepository interface {
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.SavedCourse, int, error)
	Find(ctx context.Context, userID, courseID string) (*models.SavedCourse, error)
	Create(ctx context.Context, saved *models.SavedCourse) error
	Delete(ctx context.Context, userID, courseID string) error
}

// SavedCourseService manages per-user course bookmarks. Saving is idempotent;
// re-saving an already saved course is a no-op.
type SavedCourseService struct {
	repo    savedCourseRepository
	courses courseRepository
	logger  *zap.Logger
}

// NewSavedCourseService constructs a SavedCourseService instance.
func NewSavedCourseService(repo savedCourseRepository, courses courseRepository, logger *zap.Logger) *SavedCourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SavedCourseService{repo: repo, courses: courses, logger: logger}
}

// List returns the caller's bookmarks.
func (s *SavedCourseService) List(ctx context.Context, userID string, page, pageSize int) ([]models.SavedCourse, int, error) {
	saved, total, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list saved courses")
	}
	return saved, total, nil
}

// Save bookmarks a course for the caller.
func (s *SavedCourseService) Save(ctx context.Context, userID, courseID string) (*models.SavedCourse, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}

	if existing, err := s.repo.Find(ctx, userID, courseID); err == nil {
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check bookmark")
	}

	saved := &models.SavedCourse{UserID: userID, CourseID: courseID}
	if err := s.repo.Create(ctx, saved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}
	return saved, nil
}

// Remove drops the caller's bookmark.
func (s *SavedCourseService) Remove(ctx context.Context, userID, courseID string) error {
	if err := s.repo.Delete(ctx, userID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "saved course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove saved course")
	}
	return nil
}
