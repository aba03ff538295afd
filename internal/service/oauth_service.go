package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/provider"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
	"github.com/acadhub/portal-api/pkg/normalize"
)

type oauthUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProviderLink(ctx context.Context, id, providerName, providerID string) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type tokenIssuer interface {
	IssueTokenPair(user *models.User) (*models.TokenPair, error)
}

// OAuthService resolves provider credentials and links the resulting identity
// to a local account. Linking is keyed by email: a matching account gets its
// (provider, provider_id) pair overwritten, anything else stays untouched.
type OAuthService struct {
	repo      oauthUserRepository
	issuer    tokenIssuer
	verifiers map[string]provider.Verifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOAuthService constructs an OAuthService from the registered verifiers.
func NewOAuthService(repo oauthUserRepository, issuer tokenIssuer, verifiers []provider.Verifier, validate *validator.Validate, logger *zap.Logger) *OAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	byName := make(map[string]provider.Verifier, len(verifiers))
	for _, v := range verifiers {
		byName[v.Name()] = v
	}
	return &OAuthService{repo: repo, issuer: issuer, verifiers: byName, validator: validate, logger: logger}
}

// Authenticate verifies the credential with the named provider and returns a
// fresh token pair for the linked (or newly created) account. The provider
// name is checked before the credential so an unsupported provider never
// triggers an upstream call.
func (s *OAuthService) Authenticate(ctx context.Context, providerName, credential string) (*models.AuthResponse, *models.TokenPair, error) {
	verifier, ok := s.verifiers[providerName]
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unsupported provider")
	}
	if credential == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "missing provider credential")
	}

	identity, err := verifier.Verify(ctx, credential)
	if err != nil {
		s.logger.Warn("provider verification failed", zap.String("provider", providerName), zap.Error(err))
		return nil, nil, appErrors.Clone(appErrors.ErrProvider, "")
	}
	if identity.Email == "" || identity.ProviderID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrProvider, "")
	}

	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	pair, err := s.issuer.IssueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	return &models.AuthResponse{
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
		User:        user.Info(),
		IssuedAt:    time.Now().UTC(),
	}, pair, nil
}

// resolveUser finds the account by normalized email, creating a STUDENT
// account on first sight. Existing accounts get the provider link overwritten,
// last writer wins.
func (s *OAuthService) resolveUser(ctx context.Context, identity *provider.Identity) (*models.User, error) {
	email := normalize.Email(identity.Email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if err := s.repo.UpdateProviderLink(ctx, user.ID, identity.Provider, identity.ProviderID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link provider")
		}
		user.Provider = &identity.Provider
		user.ProviderID = &identity.ProviderID
		s.auditLink(ctx, user.ID, identity.Provider)
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	newUser := &models.User{
		FirstName:  normalize.Title(identity.FirstName),
		LastName:   normalize.Title(identity.LastName),
		Email:      email,
		Provider:   &identity.Provider,
		ProviderID: &identity.ProviderID,
		Role:       models.RoleStudent,
		IsActive:   true,
		IsVerified: true,
	}
	if identity.AvatarURL != "" {
		newUser.AvatarURL = &identity.AvatarURL
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}
	s.auditLink(ctx, newUser.ID, identity.Provider)
	return newUser, nil
}

func (s *OAuthService) auditLink(ctx context.Context, userID, providerName string) {
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionOAuthLink,
		Resource:   "auth",
		ResourceID: &userID,
		NewValues:  []byte(`{"provider":"` + providerName + `"}`),
	}
	if err := s.repo.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record oauth audit log", zap.Error(err))
	}
}
