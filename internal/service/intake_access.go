package service

import "github.com/acadhub/portal-api/internal/models"

// IntakeVerb names the operations guarded by the moderation-queue access
// matrix.
type IntakeVerb string

const (
	IntakeVerbCreate IntakeVerb = "create"
	IntakeVerbRead   IntakeVerb = "read"
	IntakeVerbList   IntakeVerb = "list"
	IntakeVerbUpdate IntakeVerb = "update"
	IntakeVerbDelete IntakeVerb = "delete"
)

// CanAccessIntake decides the role/verb matrix for the moderation queue.
// Any authenticated role may submit; reading and updating is staff work;
// deleting is restricted to moderators and admins. Unknown roles and verbs
// are denied.
func CanAccessIntake(role models.UserRole, verb IntakeVerb) bool {
	if !role.Valid() {
		return false
	}
	switch verb {
	case IntakeVerbCreate:
		return true
	case IntakeVerbRead, IntakeVerbList, IntakeVerbUpdate:
		return role == models.RoleLecturer || role == models.RoleModerator || role == models.RoleAdmin
	case IntakeVerbDelete:
		return role == models.RoleModerator || role == models.RoleAdmin
	}
	return false
}
