package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
)

type mockUserRepo struct {
	byID      map[string]*models.User
	byEmail   map[string]*models.User
	updated   []*models.User
	deleted   []string
	auditLogs []*models.AuditLog
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.byEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return nil, 0, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.updated = append(m.updated, user)
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func TestUserServiceUpdateProfileNormalizesNames(t *testing.T) {
	repo := &mockUserRepo{byID: map[string]*models.User{
		"u1": {ID: "u1", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleStudent},
	}}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	updated, err := svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{
		FirstName: str("grace brewster"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace Brewster", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)
}

func TestUserServiceAdminUpdateStaffRoleRequiresStaffID(t *testing.T) {
	repo := &mockUserRepo{byID: map[string]*models.User{
		"u1": {ID: "u1", Role: models.RoleStudent},
	}}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	role := models.RoleLecturer
	_, err := svc.AdminUpdate(context.Background(), "admin-1", "u1", models.AdminUpdateUserRequest{Role: &role})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "staff_id")

	staffID := "ST-1"
	updated, err := svc.AdminUpdate(context.Background(), "admin-1", "u1", models.AdminUpdateUserRequest{Role: &role, StaffID: &staffID})
	require.NoError(t, err)
	assert.Equal(t, models.RoleLecturer, updated.Role)
	assert.Equal(t, "ST-1", *updated.StaffID)
}

func TestUserServiceAdminUpdateEmailConflict(t *testing.T) {
	repo := &mockUserRepo{
		byID: map[string]*models.User{
			"u1": {ID: "u1", Email: "old@example.com", Role: models.RoleStudent},
		},
		byEmail: map[string]*models.User{
			"taken@example.com": {ID: "u2", Email: "taken@example.com"},
		},
	}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	email := "Taken@Example.com"
	_, err := svc.AdminUpdate(context.Background(), "admin-1", "u1", models.AdminUpdateUserRequest{Email: &email})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDelete(t *testing.T) {
	repo := &mockUserRepo{byID: map[string]*models.User{"u1": {ID: "u1"}}}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "admin-1", "u1"))
	assert.Equal(t, []string{"u1"}, repo.deleted)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionUserDelete, repo.auditLogs[0].Action)

	err := svc.Delete(context.Background(), "admin-1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
