package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent   UserRole = "STUDENT"
	RoleLecturer  UserRole = "LECTURER"
	RoleAdmin     UserRole = "ADMIN"
	RoleModerator UserRole = "MODERATOR"
)

// StaffRoles are the roles that must carry a staff_id.
var StaffRoles = []UserRole{RoleLecturer, RoleAdmin, RoleModerator}

// IsStaff reports whether the role requires a staff identifier.
func (r UserRole) IsStaff() bool {
	switch r {
	case RoleLecturer, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// Valid reports whether the role is one of the closed set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// User represents an application user stored in the users table. PasswordHash
// is nil for pure-OAuth accounts (the "unusable password" state); Provider and
// ProviderID are either both set or both nil.
type User struct {
	ID           string     `db:"id" json:"id"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash *string    `db:"password_hash" json:"-"`
	Provider     *string    `db:"provider" json:"provider,omitempty"`
	ProviderID   *string    `db:"provider_id" json:"provider_id,omitempty"`
	AvatarURL    *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Role         UserRole   `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	IsVerified   bool       `db:"is_verified" json:"is_verified"`
	DepartmentID *string    `db:"department_id" json:"department_id,omitempty"`
	Year         *int       `db:"year" json:"year,omitempty"`
	Semester     *int       `db:"semester" json:"semester,omitempty"`
	StudentID    *string    `db:"student_id" json:"student_id,omitempty"`
	StaffID      *string    `db:"staff_id" json:"staff_id,omitempty"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsOAuth reports whether the account is linked to an external provider.
func (u *User) IsOAuth() bool {
	return u.Provider != nil && u.ProviderID != nil
}

// HasUsablePassword reports whether a local credential is set.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
