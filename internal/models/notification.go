package models

import "time"

// NotificationType classifies notifications.
type NotificationType string

const (
	NotificationInfo     NotificationType = "INFO"
	NotificationAlert    NotificationType = "ALERT"
	NotificationReminder NotificationType = "REMINDER"
)

// Valid reports whether the notification type is known.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationAlert, NotificationReminder:
		return true
	}
	return false
}

// Notification is a per-user message row.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	UserID   string
	Type     *NotificationType
	Search   string
	Page     int
	PageSize int
}

// BroadcastNotificationRequest fans a message out to an audience: all active
// users, the audience of a course's offerings, or an explicit id list.
type BroadcastNotificationRequest struct {
	Title    string           `json:"title" validate:"required"`
	Message  string           `json:"message" validate:"required"`
	Type     NotificationType `json:"type" validate:"required"`
	AllUsers bool             `json:"all_users"`
	CourseID *string          `json:"course_id"`
	UserIDs  []string         `json:"user_id"`
}
