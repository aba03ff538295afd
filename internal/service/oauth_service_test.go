package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/provider"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
)

type mockOAuthRepo struct {
	usersByEmail map[string]*models.User
	created      []*models.User
	linked       [][3]string
	auditLogs    []*models.AuditLog
}

func (m *mockOAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockOAuthRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "new-id"
	m.created = append(m.created, user)
	return nil
}

func (m *mockOAuthRepo) UpdateProviderLink(ctx context.Context, id, providerName, providerID string) error {
	m.linked = append(m.linked, [3]string{id, providerName, providerID})
	return nil
}

func (m *mockOAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockOAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type stubVerifier struct {
	name     string
	identity *provider.Identity
	err      error
	calls    int
}

func (s *stubVerifier) Name() string { return s.name }

func (s *stubVerifier) Verify(ctx context.Context, credential string) (*provider.Identity, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func newOAuthService(repo *mockOAuthRepo, verifiers ...provider.Verifier) *OAuthService {
	issuer := NewAuthService(&mockAuthRepo{}, validator.New(), zap.NewNop(), testAuthConfig())
	return NewOAuthService(repo, issuer, verifiers, validator.New(), zap.NewNop())
}

func TestOAuthAuthenticateCreatesAccount(t *testing.T) {
	repo := &mockOAuthRepo{usersByEmail: map[string]*models.User{}}
	verifier := &stubVerifier{name: "google", identity: &provider.Identity{
		Provider: "google", ProviderID: "goog-1", Email: "Ada@Example.com", FirstName: "ada", LastName: "lovelace",
	}}
	svc := newOAuthService(repo, verifier)

	res, pair, err := svc.Authenticate(context.Background(), "google", "id-token")
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	created := repo.created[0]
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "Ada", created.FirstName)
	assert.Equal(t, models.RoleStudent, created.Role)
	assert.True(t, created.IsVerified)
	require.NotNil(t, created.Provider)
	assert.Equal(t, "google", *created.Provider)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestOAuthAuthenticateLinksExistingAccount(t *testing.T) {
	existing := &models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleLecturer, IsActive: true}
	repo := &mockOAuthRepo{usersByEmail: map[string]*models.User{"ada@example.com": existing}}
	verifier := &stubVerifier{name: "github", identity: &provider.Identity{
		Provider: "github", ProviderID: "42", Email: "ada@example.com",
	}}
	svc := newOAuthService(repo, verifier)

	res, _, err := svc.Authenticate(context.Background(), "github", "code")
	require.NoError(t, err)
	assert.Empty(t, repo.created)
	require.Len(t, repo.linked, 1)
	assert.Equal(t, [3]string{"u1", "github", "42"}, repo.linked[0])
	assert.Equal(t, models.RoleLecturer, res.User.Role)
}

func TestOAuthAuthenticateIdempotentLink(t *testing.T) {
	existing := &models.User{ID: "u1", Email: "ada@example.com", IsActive: true}
	repo := &mockOAuthRepo{usersByEmail: map[string]*models.User{"ada@example.com": existing}}
	verifier := &stubVerifier{name: "google", identity: &provider.Identity{
		Provider: "google", ProviderID: "goog-1", Email: "ada@example.com",
	}}
	svc := newOAuthService(repo, verifier)

	_, _, err := svc.Authenticate(context.Background(), "google", "token")
	require.NoError(t, err)
	_, _, err = svc.Authenticate(context.Background(), "google", "token")
	require.NoError(t, err)

	assert.Empty(t, repo.created)
	require.Len(t, repo.linked, 2)
	assert.Equal(t, repo.linked[0], repo.linked[1])
}

func TestOAuthAuthenticateLastWriterWins(t *testing.T) {
	existing := &models.User{ID: "u1", Email: "ada@example.com", IsActive: true}
	repo := &mockOAuthRepo{usersByEmail: map[string]*models.User{"ada@example.com": existing}}
	google := &stubVerifier{name: "google", identity: &provider.Identity{Provider: "google", ProviderID: "goog-1", Email: "ada@example.com"}}
	github := &stubVerifier{name: "github", identity: &provider.Identity{Provider: "github", ProviderID: "42", Email: "ada@example.com"}}
	svc := newOAuthService(repo, google, github)

	_, _, err := svc.Authenticate(context.Background(), "google", "token")
	require.NoError(t, err)
	_, _, err = svc.Authenticate(context.Background(), "github", "code")
	require.NoError(t, err)

	require.Len(t, repo.linked, 2)
	assert.Equal(t, "github", repo.linked[1][1])
}

func TestOAuthAuthenticateUnsupportedProvider(t *testing.T) {
	verifier := &stubVerifier{name: "google"}
	svc := newOAuthService(&mockOAuthRepo{}, verifier)

	_, _, err := svc.Authenticate(context.Background(), "apple", "token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, verifier.calls)
}

func TestOAuthAuthenticateProviderFailure(t *testing.T) {
	verifier := &stubVerifier{name: "google", err: errors.New("upstream said no")}
	svc := newOAuthService(&mockOAuthRepo{usersByEmail: map[string]*models.User{}}, verifier)

	_, _, err := svc.Authenticate(context.Background(), "google", "token")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrProvider.Code, appErr.Code)
	assert.NotContains(t, appErr.Message, "upstream said no")
}

func TestOAuthAuthenticateIncompleteIdentity(t *testing.T) {
	existing := &models.User{ID: "u1", Email: "ada@example.com", IsActive: true}
	repo := &mockOAuthRepo{usersByEmail: map[string]*models.User{"ada@example.com": existing}}
	verifier := &stubVerifier{name: "google", identity: &provider.Identity{
		Provider: "google", Email: "ada@example.com",
	}}
	svc := newOAuthService(repo, verifier)

	_, _, err := svc.Authenticate(context.Background(), "google", "token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProvider.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.linked)
}

func TestOAuthAuthenticateInactiveAccount(t *testing.T) {
	existing := &models.User{ID: "u1", Email: "ada@example.com", IsActive: false}
	repo := &mockOAuthRepo{usersByEmail: map[string]*models.User{"ada@example.com": existing}}
	verifier := &stubVerifier{name: "google", identity: &provider.Identity{Provider: "google", ProviderID: "goog-1", Email: "ada@example.com"}}
	svc := newOAuthService(repo, verifier)

	_, _, err := svc.Authenticate(context.Background(), "google", "token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}
