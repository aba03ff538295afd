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

type courseOfferingRepository interface {
	List(ctx context.Context, filter models.CourseOfferingFilter) ([]models.CourseOffering, int, error)
	FindByID(ctx context.Context, id string) (*models.CourseOffering, error)
	Create(ctx context.Context, offering *models.CourseOffering) error
	Update(ctx context.Context, offering *models.CourseOffering) error
	Delete(ctx context.Context, id string) error
}

// CourseOfferingRequest is the create/update payload for offerings.
type CourseOfferingRequest struct {
	CourseID     string `json:"course_id" validate:"required"`
	DepartmentID string `json:"department_id" validate:"required"`
	Year         int    `json:"year" validate:"required,min=1"`
	Semester     int    `json:"semester" validate:"required,min=1,max=12"`
}

// CourseOfferingService manages which cohorts a course runs for.
type CourseOfferingService struct {
	repo        courseOfferingRepository
	courses     courseRepository
	departments departmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseOfferingService constructs a CourseOfferingService instance.
func NewCourseOfferingService(repo courseOfferingRepository, courses courseRepository, departments departmentRepository, validate *validator.Validate, logger *zap.Logger) *CourseOfferingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseOfferingService{repo: repo, courses: courses, departments: departments, validator: validate, logger: logger}
}

// List returns offerings matching the filter.
func (s *CourseOfferingService) List(ctx context.Context, filter models.CourseOfferingFilter) ([]models.CourseOffering, int, error) {
	offerings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course offerings")
	}
	return offerings, total, nil
}

// Get returns an offering by id.
func (s *CourseOfferingService) Get(ctx context.Context, id string) (*models.CourseOffering, error) {
	offering, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course offering")
	}
	return offering, nil
}

// Create registers an offering after checking both foreign keys.
func (s *CourseOfferingService) Create(ctx context.Context, req CourseOfferingRequest) (*models.CourseOffering, error) {
	if err := s.checkRefs(ctx, req); err != nil {
		return nil, err
	}

	offering := &models.CourseOffering{
		CourseID:     req.CourseID,
		DepartmentID: req.DepartmentID,
		Year:         req.Year,
		Semester:     req.Semester,
	}
	if err := s.repo.Create(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course offering")
	}
	return offering, nil
}

// Update applies changes to an offering.
func (s *CourseOfferingService) Update(ctx context.Context, id string, req CourseOfferingRequest) (*models.CourseOffering, error) {
	if err := s.checkRefs(ctx, req); err != nil {
		return nil, err
	}

	offering, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	offering.CourseID = req.CourseID
	offering.DepartmentID = req.DepartmentID
	offering.Year = req.Year
	offering.Semester = req.Semester
	if err := s.repo.Update(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course offering")
	}
	return offering, nil
}

// Delete removes an offering.
func (s *CourseOfferingService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course offering")
	}
	return nil
}

func (s *CourseOfferingService) checkRefs(ctx context.Context, req CourseOfferingRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course offering payload")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.WithFields(map[string]string{"course_id": "course not found"}, "validation failed")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}
	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.WithFields(map[string]string{"department_id": "department not found"}, "validation failed")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department")
	}
	return nil
}
