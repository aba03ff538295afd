package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
	"github.com/acadhub/portal-api/pkg/export"
	"github.com/acadhub/portal-api/pkg/normalize"
)

type intakeRepository interface {
	Create(ctx context.Context, intake *models.Intake) error
	FindByID(ctx context.Context, id string) (*models.Intake, error)
	Update(ctx context.Context, intake *models.Intake) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.IntakeFilter) ([]models.Intake, int, error)
	FindFirstByUser(ctx context.Context, userID string) (*models.Intake, error)
	HasOpenComplaint(ctx context.Context, contentID string) (bool, error)
}

type intakeAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// requiredIntakeFields maps each intake type to the payload fields that must
// be present for the record to be accepted.
var requiredIntakeFields = map[models.IntakeType][]string{
	models.IntakeAccess:           {"full_name", "phone_number", "staff_id"},
	models.IntakeRoleChange:       {"description"},
	models.IntakeDataUpdate:       {},
	models.IntakeCourseAssignment: {"staff_id"},
	models.IntakeComplain:         {"description"},
	models.IntakeFeedback:         {"description"},
	models.IntakeLeave:            {"staff_id", "description"},
	models.IntakeGradeReview:      {"full_name", "department_id", "student_id"},
	models.IntakeOther:            {},
}

// IntakeService implements the moderation queue: submissions, staff review,
// the pre-login status probe and tabular exports.
type IntakeService struct {
	repo      intakeRepository
	auditor   intakeAuditor
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIntakeService constructs an IntakeService instance.
func NewIntakeService(repo intakeRepository, auditor intakeAuditor, validate *validator.Validate, logger *zap.Logger) *IntakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &IntakeService{
		repo:      repo,
		auditor:   auditor,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Create submits a new record. Whatever the payload claims, the record is
// owned by the caller and starts out Pending.
func (s *IntakeService) Create(ctx context.Context, actorID string, role models.UserRole, req models.CreateIntakeRequest) (*models.Intake, error) {
	if !CanAccessIntake(role, IntakeVerbCreate) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if !req.Type.Valid() {
		return nil, appErrors.WithFields(map[string]string{"type": "unknown intake type"}, "validation failed")
	}

	intake := &models.Intake{
		UserID:       actorID,
		Type:         req.Type,
		Status:       models.IntakePending,
		FullName:     titled(req.FullName),
		PhoneNumber:  req.PhoneNumber,
		StaffID:      req.StaffID,
		StudentID:    req.StudentID,
		DepartmentID: req.DepartmentID,
		ContentID:    req.ContentID,
		Description:  req.Description,
	}

	if fields := missingFields(intake, nil); len(fields) > 0 {
		return nil, appErrors.WithFields(fields, "validation failed")
	}

	if err := s.repo.Create(ctx, intake); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create intake")
	}
	return intake, nil
}

// Get returns a record for staff review.
func (s *IntakeService) Get(ctx context.Context, role models.UserRole, id string) (*models.Intake, error) {
	if !CanAccessIntake(role, IntakeVerbRead) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return s.find(ctx, id)
}

// List returns the moderation queue: pending first, then rejected, then
// approved, oldest first within each group.
func (s *IntakeService) List(ctx context.Context, role models.UserRole, filter models.IntakeFilter) ([]models.Intake, int, error) {
	if !CanAccessIntake(role, IntakeVerbList) {
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	intakes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list intake records")
	}
	return intakes, total, nil
}

// Update merges the patch into the stored record. Required-field checks run
// against the merged record, so a field already on file satisfies its
// requirement even when absent from the patch.
func (s *IntakeService) Update(ctx context.Context, actorID string, role models.UserRole, id string, req models.UpdateIntakeRequest) (*models.Intake, error) {
	if !CanAccessIntake(role, IntakeVerbUpdate) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, appErrors.WithFields(map[string]string{"type": "unknown intake type"}, "validation failed")
		}
		updated.Type = *req.Type
	}
	statusChanged := false
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, appErrors.WithFields(map[string]string{"status": "unknown status"}, "validation failed")
		}
		statusChanged = *req.Status != existing.Status
		if statusChanged && existing.Status != models.IntakePending {
			return nil, appErrors.WithFields(map[string]string{"status": "decided records cannot change status"}, "validation failed")
		}
		updated.Status = *req.Status
	}
	if req.FullName != nil {
		updated.FullName = titled(req.FullName)
	}
	if req.PhoneNumber != nil {
		updated.PhoneNumber = req.PhoneNumber
	}
	if req.StaffID != nil {
		updated.StaffID = req.StaffID
	}
	if req.StudentID != nil {
		updated.StudentID = req.StudentID
	}
	if req.DepartmentID != nil {
		updated.DepartmentID = req.DepartmentID
	}
	if req.ContentID != nil {
		updated.ContentID = req.ContentID
	}
	if req.Description != nil {
		updated.Description = req.Description
	}

	if fields := missingFields(&updated, existing); len(fields) > 0 {
		return nil, appErrors.WithFields(fields, "validation failed")
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update intake")
	}

	if statusChanged {
		s.auditDecision(ctx, actorID, updated.ID, updated.Status)
	}
	return &updated, nil
}

// Delete removes a record from the queue.
func (s *IntakeService) Delete(ctx context.Context, role models.UserRole, id string) error {
	if !CanAccessIntake(role, IntakeVerbDelete) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "intake record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete intake")
	}
	return nil
}

// CheckUser reports whether a user has any record on file and its queue-first
// status. The endpoint is unauthenticated, so the answer is deliberately
// limited to existence plus status.
func (s *IntakeService) CheckUser(ctx context.Context, req models.CheckUserRequest) (*models.CheckUserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check payload")
	}

	intake, err := s.repo.FindFirstByUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.CheckUserResponse{Exists: false}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check user")
	}
	status := intake.Status
	return &models.CheckUserResponse{Exists: true, Status: &status}, nil
}

// ContentReported reports whether any complaint references the content,
// regardless of moderation status. Staff-facing, gated like reads.
func (s *IntakeService) ContentReported(ctx context.Context, role models.UserRole, contentID string) (bool, error) {
	if !CanAccessIntake(role, IntakeVerbRead) {
		return false, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if contentID == "" {
		return false, appErrors.WithFields(map[string]string{"content_id": "this field is required"}, "validation failed")
	}
	reported, err := s.repo.HasOpenComplaint(ctx, contentID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check content")
	}
	return reported, nil
}

// Export renders the filtered queue as CSV or PDF bytes.
func (s *IntakeService) Export(ctx context.Context, role models.UserRole, format string, filter models.IntakeFilter) ([]byte, string, error) {
	if !CanAccessIntake(role, IntakeVerbList) {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "")
	}

	filter.Page = 1
	filter.PageSize = 100
	intakes, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list intake records")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "User", "Type", "Status", "Full Name", "Staff ID", "Student ID", "Created"},
	}
	for _, intake := range intakes {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":         intake.ID,
			"User":       intake.UserID,
			"Type":       string(intake.Type),
			"Status":     string(intake.Status),
			"Full Name":  deref(intake.FullName),
			"Staff ID":   deref(intake.StaffID),
			"Student ID": deref(intake.StudentID),
			"Created":    intake.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Intake Queue")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	}
	return nil, "", appErrors.WithFields(map[string]string{"format": "must be csv or pdf"}, "validation failed")
}

func (s *IntakeService) find(ctx context.Context, id string) (*models.Intake, error) {
	intake, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intake record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch intake")
	}
	return intake, nil
}

func (s *IntakeService) auditDecision(ctx context.Context, actorID, intakeID string, status models.IntakeStatus) {
	if s.auditor == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionIntakeDecision,
		Resource:   "intake",
		ResourceID: &intakeID,
		NewValues:  []byte(fmt.Sprintf(`{"status":%q}`, status)),
	}
	if err := s.auditor.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record intake decision", zap.Error(err))
	}
}

// missingFields collects every required field of the record's type that is
// empty. When fallback is non-nil its values count as present, which gives
// updates the existing-record fallback.
func missingFields(intake *models.Intake, fallback *models.Intake) map[string]string {
	fields := map[string]string{}
	for _, name := range requiredIntakeFields[intake.Type] {
		if present(intakeField(intake, name)) {
			continue
		}
		if fallback != nil && present(intakeField(fallback, name)) {
			continue
		}
		fields[name] = "this field is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func intakeField(intake *models.Intake, name string) *string {
	switch name {
	case "full_name":
		return intake.FullName
	case "phone_number":
		return intake.PhoneNumber
	case "staff_id":
		return intake.StaffID
	case "student_id":
		return intake.StudentID
	case "department_id":
		return intake.DepartmentID
	case "description":
		return intake.Description
	}
	return nil
}

func present(value *string) bool {
	return value != nil && *value != ""
}

// titled title-cases a submitted name, leaving nil untouched.
func titled(name *string) *string {
	if name == nil {
		return nil
	}
	t := normalize.Title(*name)
	return &t
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
