package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
)

type courseAssignmentRepository interface {
	List(ctx context.Context, userID, courseID string, page, pageSize int) ([]models.CourseAssignment, int, error)
	FindByID(ctx context.Context, id string) (*models.CourseAssignment, error)
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	Create(ctx context.Context, assignment *models.CourseAssignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CourseAssignmentRequest links a lecturer to a course.
type CourseAssignmentRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	CourseID string `json:"course_id" validate:"required"`
}

// CourseAssignmentService manages lecturer-course links.
type CourseAssignmentService struct {
	repo      courseAssignmentRepository
	users     assignmentUserRepository
	courses   courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseAssignmentService constructs a CourseAssignmentService instance.
func NewCourseAssignmentService(repo courseAssignmentRepository, users assignmentUserRepository, courses courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseAssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseAssignmentService{repo: repo, users: users, courses: courses, validator: validate, logger: logger}
}

// List returns assignments scoped to a user and/or course.
func (s *CourseAssignmentService) List(ctx context.Context, userID, courseID string, page, pageSize int) ([]models.CourseAssignment, int, error) {
	assignments, total, err := s.repo.List(ctx, userID, courseID, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course assignments")
	}
	return assignments, total, nil
}

// Create links a staff user to a course. Students cannot hold assignments and
// duplicate links are rejected.
func (s *CourseAssignmentService) Create(ctx context.Context, req CourseAssignmentRequest) (*models.CourseAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithFields(map[string]string{"user_id": "user not found"}, "validation failed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check user")
	}
	if !user.Role.IsStaff() {
		return nil, appErrors.WithFields(map[string]string{"user_id": "only staff can be assigned to courses"}, "validation failed")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithFields(map[string]string{"course_id": "course not found"}, "validation failed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}

	exists, err := s.repo.Exists(ctx, req.UserID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user is already assigned to this course")
	}

	assignment := &models.CourseAssignment{UserID: req.UserID, CourseID: req.CourseID}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Delete removes an assignment.
func (s *CourseAssignmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}
