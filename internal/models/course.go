package models

import (
	"time"

	"github.com/lib/pq"
)

// CourseStatus classifies how a course counts toward a program.
type CourseStatus string

const (
	CourseCompulsory CourseStatus = "COMPULSORY"
	CourseSupportive CourseStatus = "SUPPORTIVE"
	CourseCommon     CourseStatus = "COMMON"
	CourseElective   CourseStatus = "ELECTIVE"
)

// Valid reports whether the status is a known classification.
func (s CourseStatus) Valid() bool {
	switch s {
	case CourseCompulsory, CourseSupportive, CourseCommon, CourseElective:
		return true
	}
	return false
}

// Course is a catalogue entry with a unique code.
type Course struct {
	ID            string         `db:"id" json:"id"`
	Code          string         `db:"code" json:"code"`
	Name          string         `db:"name" json:"name"`
	Description   *string        `db:"description" json:"description,omitempty"`
	Status        CourseStatus   `db:"status" json:"status"`
	CreditPoints  *int           `db:"credit_points" json:"credit_points,omitempty"`
	LectureHours  *int           `db:"lecture_hours" json:"lecture_hours,omitempty"`
	LabHours      *int           `db:"lab_hours" json:"lab_hours,omitempty"`
	TutorialHours *int           `db:"tutorial_hours" json:"tutorial_hours,omitempty"`
	HomeworkHours *int           `db:"homework_hours" json:"homework_hours,omitempty"`
	CreditHours   *int           `db:"credit_hours" json:"credit_hours,omitempty"`
	Tags          pq.StringArray `db:"tags" json:"tags"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// CourseFilter narrows catalogue listings.
type CourseFilter struct {
	Status   *CourseStatus
	Search   string
	Tag      string
	Page     int
	PageSize int
}

// CourseOffering runs a course for a department cohort.
type CourseOffering struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Year         int       `db:"year" json:"year"`
	Semester     int       `db:"semester" json:"semester"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseOfferingFilter narrows offering listings.
type CourseOfferingFilter struct {
	CourseID     string
	DepartmentID string
	Year         *int
	Semester     *int
	Page         int
	PageSize     int
}

// CourseAssignment links a lecturer to a course. Approved COURSE_ASSIGNMENT
// intakes materialize here.
type CourseAssignment struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SavedCourse is a (user, course) bookmark, unique together.
type SavedCourse struct {
	ID       string    `db:"id" json:"id"`
	UserID   string    `db:"user_id" json:"user_id"`
	CourseID string    `db:"course_id" json:"course_id"`
	SavedAt  time.Time `db:"saved_at" json:"saved_at"`
}
