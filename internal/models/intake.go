package models

import "time"

// IntakeType discriminates the request kinds handled by the moderation queue.
type IntakeType string

const (
	IntakeAccess           IntakeType = "ACCESS"
	IntakeRoleChange       IntakeType = "ROLE_CHANGE"
	IntakeDataUpdate       IntakeType = "DATA_UPDATE"
	IntakeCourseAssignment IntakeType = "COURSE_ASSIGNMENT"
	IntakeComplain         IntakeType = "COMPLAIN"
	IntakeFeedback         IntakeType = "FEEDBACK"
	IntakeLeave            IntakeType = "LEAVE"
	IntakeGradeReview      IntakeType = "GRADE_REVIEW"
	IntakeOther            IntakeType = "OTHER"
)

// Valid reports whether the type is one of the nine known kinds.
func (t IntakeType) Valid() bool {
	switch t {
	case IntakeAccess, IntakeRoleChange, IntakeDataUpdate, IntakeCourseAssignment,
		IntakeComplain, IntakeFeedback, IntakeLeave, IntakeGradeReview, IntakeOther:
		return true
	}
	return false
}

// IntakeStatus is the moderation state. Pending is the only non-terminal state.
type IntakeStatus string

const (
	IntakePending  IntakeStatus = "PENDING"
	IntakeRejected IntakeStatus = "REJECTED"
	IntakeApproved IntakeStatus = "APPROVED"
)

// Valid reports whether the status is part of the lifecycle.
func (s IntakeStatus) Valid() bool {
	switch s {
	case IntakePending, IntakeRejected, IntakeApproved:
		return true
	}
	return false
}

// Rank orders statuses for the moderation queue: actionable first.
func (s IntakeStatus) Rank() int {
	switch s {
	case IntakePending:
		return 0
	case IntakeRejected:
		return 1
	case IntakeApproved:
		return 2
	}
	return 3
}

// Intake is a polymorphic request record. Every payload field exists on every
// row; which ones must be non-empty depends on Type.
type Intake struct {
	ID           string       `db:"id" json:"id"`
	UserID       string       `db:"user_id" json:"user_id"`
	Type         IntakeType   `db:"type" json:"type"`
	Status       IntakeStatus `db:"status" json:"status"`
	FullName     *string      `db:"full_name" json:"full_name,omitempty"`
	PhoneNumber  *string      `db:"phone_number" json:"phone_number,omitempty"`
	StaffID      *string      `db:"staff_id" json:"staff_id,omitempty"`
	StudentID    *string      `db:"student_id" json:"student_id,omitempty"`
	DepartmentID *string      `db:"department_id" json:"department_id,omitempty"`
	ContentID    *string      `db:"content_id" json:"content_id,omitempty"`
	Description  *string      `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// IntakeFilter captures the moderation-queue filters.
type IntakeFilter struct {
	Type     *IntakeType
	Status   *IntakeStatus
	Search   string
	Page     int
	PageSize int
}

// CreateIntakeRequest is the submission payload. Caller-supplied user or
// status values are ignored: owner and Pending are forced server-side.
type CreateIntakeRequest struct {
	Type         IntakeType `json:"type" validate:"required"`
	FullName     *string    `json:"full_name"`
	PhoneNumber  *string    `json:"phone_number"`
	StaffID      *string    `json:"staff_id"`
	StudentID    *string    `json:"student_id"`
	DepartmentID *string    `json:"department_id"`
	ContentID    *string    `json:"content_id"`
	Description  *string    `json:"description"`
}

// UpdateIntakeRequest is the moderation/update payload. Nil fields are left
// untouched on the stored record.
type UpdateIntakeRequest struct {
	Type         *IntakeType   `json:"type"`
	Status       *IntakeStatus `json:"status"`
	FullName     *string       `json:"full_name"`
	PhoneNumber  *string       `json:"phone_number"`
	StaffID      *string       `json:"staff_id"`
	StudentID    *string       `json:"student_id"`
	DepartmentID *string       `json:"department_id"`
	ContentID    *string       `json:"content_id"`
	Description  *string       `json:"description"`
}

// CheckUserRequest asks whether a user has any intake on file. The endpoint is
// unauthenticated so clients can show "request pending" UI before login.
type CheckUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// CheckUserResponse reports existence plus the latest status.
type CheckUserResponse struct {
	Exists bool          `json:"exists"`
	Status *IntakeStatus `json:"status"`
}
