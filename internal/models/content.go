package models

import (
	"encoding/json"
	"time"
)

// ContentType classifies distributed course material.
type ContentType string

const (
	ContentLecture    ContentType = "LECTURE"
	ContentAssignment ContentType = "ASSIGNMENT"
	ContentLab        ContentType = "LAB"
	ContentTutorial   ContentType = "TUTORIAL"
)

// Valid reports whether the content type is known.
func (t ContentType) Valid() bool {
	switch t {
	case ContentLecture, ContentAssignment, ContentLab, ContentTutorial:
		return true
	}
	return false
}

// Content is a course-scoped file record. FileMeta holds the uploaded file's
// name/size/mime as JSON; Path is the storage-relative location.
type Content struct {
	ID        string          `db:"id" json:"id"`
	CourseID  string          `db:"course_id" json:"course_id"`
	Title     string          `db:"title" json:"title"`
	Type      ContentType     `db:"type" json:"type"`
	Path      string          `db:"path" json:"path"`
	Chapter   *string         `db:"chapter" json:"chapter,omitempty"`
	FileMeta  json.RawMessage `db:"file_meta" json:"file"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ContentFilter narrows content listings.
type ContentFilter struct {
	CourseID string
	Type     *ContentType
	Search   string
	Page     int
	PageSize int
}
