package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/acadhub/portal-api/internal/models"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
)

type mockAuthRepo struct {
	usersByEmail     map[string]*models.User
	usersByID        map[string]*models.User
	created          []*models.User
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "generated-id"
	m.created = append(m.created, user)
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		Secret:        "secret",
		Issuer:        "portal-api",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 30 * 24 * time.Hour,
	}
}

func TestAuthServiceRegisterNormalizesIdentity(t *testing.T) {
	repo := &mockAuthRepo{usersByEmail: map[string]*models.User{}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, pair, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: "ada",
		LastName:  "LOVELACE",
		Email:     "  Ada.Lovelace@Example.COM ",
		Password:  "password1",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	created := repo.created[0]
	assert.Equal(t, "ada.lovelace@example.com", created.Email)
	assert.Equal(t, "Ada", created.FirstName)
	assert.Equal(t, "Lovelace", created.LastName)
	assert.Equal(t, models.RoleStudent, created.Role)
	assert.True(t, created.IsActive)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockAuthRepo{usersByEmail: map[string]*models.User{
		"ada@example.com": {ID: "u1", Email: "ada@example.com"},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, _, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ADA@example.com", Password: "password1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	hashStr := string(hash)
	repo := &mockAuthRepo{usersByEmail: map[string]*models.User{
		"user@example.com": {ID: "u1", Email: "user@example.com", PasswordHash: &hashStr, IsActive: true, Role: models.RoleLecturer},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, pair, err := svc.Login(context.Background(), models.LoginRequest{Email: "User@Example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ParseToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleLecturer, claims.Role)
	assert.Equal(t, models.TokenTypeAccess, claims.TokenType)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	hashStr := string(hash)
	repo := &mockAuthRepo{usersByEmail: map[string]*models.User{
		"user@example.com": {ID: "u1", Email: "user@example.com", PasswordHash: &hashStr, IsActive: true},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginOAuthOnlyAccount(t *testing.T) {
	provider := "google"
	providerID := "goog-1"
	repo := &mockAuthRepo{usersByEmail: map[string]*models.User{
		"user@example.com": {ID: "u1", Email: "user@example.com", Provider: &provider, ProviderID: &providerID, IsActive: true},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "anything"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	hashStr := string(hash)
	repo := &mockAuthRepo{usersByEmail: map[string]*models.User{
		"user@example.com": {ID: "u1", Email: "user@example.com", PasswordHash: &hashStr, IsActive: false},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesPair(t *testing.T) {
	user := &models.User{ID: "u1", Email: "user@example.com", IsActive: true, Role: models.RoleStudent}
	repo := &mockAuthRepo{usersByID: map[string]*models.User{"u1": user}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	pair, err := svc.IssueTokenPair(user)
	require.NoError(t, err)

	res, newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, newPair.RefreshToken)

	claims, err := svc.ParseToken(newPair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypeRefresh, claims.TokenType)
}

func TestAuthServiceRefreshRejectsAccessToken(t *testing.T) {
	user := &models.User{ID: "u1", Email: "user@example.com", IsActive: true}
	repo := &mockAuthRepo{usersByID: map[string]*models.User{"u1": user}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	pair, err := svc.IssueTokenPair(user)
	require.NoError(t, err)

	_, _, err = svc.Refresh(context.Background(), pair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshGarbageToken(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, _, err := svc.Refresh(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
