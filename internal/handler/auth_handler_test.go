package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/service"
	"github.com/acadhub/portal-api/pkg/config"
)

type memoryUserRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := r.byID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-1"
	}
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return nil
}

func (r *memoryUserRepo) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

func (r *memoryUserRepo) CreateAuditLog(context.Context, *models.AuditLog) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/v1",
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "portal-test",
			Expiration:        time.Minute,
			RefreshExpiration: time.Hour,
		},
		Cookie: config.CookieConfig{Name: "refresh_token", Path: "/"},
	}
}

func newAuthTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	repo := newMemoryUserRepo()
	authSvc := service.NewAuthService(repo, nil, zap.NewNop(), service.AuthConfig{
		Secret:        cfg.JWT.Secret,
		Issuer:        cfg.JWT.Issuer,
		AccessExpiry:  cfg.JWT.Expiration,
		RefreshExpiry: cfg.JWT.RefreshExpiration,
	})
	h := NewAuthHandler(authSvc, nil, cfg)

	r := gin.New()
	auth := r.Group("/v1/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)
	return r
}

func refreshCookie(t *testing.T, resp *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == "refresh_token" {
			return cookie
		}
	}
	t.Fatal("refresh cookie not set")
	return nil
}

const registerPayload = `{
	"first_name": "ada",
	"last_name": "lovelace",
	"email": "ada@example.com",
	"password": "difference-engine"
}`

func postJSON(router *gin.Engine, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegisterSetsRefreshCookie(t *testing.T) {
	router := newAuthTestRouter(t)

	resp := postJSON(router, "/v1/auth/register", registerPayload)
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Contains(t, resp.Body.String(), `"access_token"`)
	require.NotContains(t, resp.Body.String(), `"refresh_token"`)

	cookie := refreshCookie(t, resp)
	require.True(t, cookie.HttpOnly)
	require.NotEmpty(t, cookie.Value)
}

func TestRefreshRotatesCookie(t *testing.T) {
	router := newAuthTestRouter(t)

	registered := postJSON(router, "/v1/auth/register", registerPayload)
	require.Equal(t, http.StatusCreated, registered.Code)
	first := refreshCookie(t, registered)

	resp := postJSON(router, "/v1/auth/refresh", "", first)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"access_token"`)

	rotated := refreshCookie(t, resp)
	require.NotEmpty(t, rotated.Value)
}

func TestRefreshWithoutCookie(t *testing.T) {
	router := newAuthTestRouter(t)

	resp := postJSON(router, "/v1/auth/refresh", "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefreshRejectsAccessTokenCookie(t *testing.T) {
	router := newAuthTestRouter(t)

	registered := postJSON(router, "/v1/auth/register", registerPayload)
	require.Equal(t, http.StatusCreated, registered.Code)

	body := registered.Body.String()
	start := strings.Index(body, `"access_token":"`) + len(`"access_token":"`)
	end := strings.Index(body[start:], `"`)
	access := body[start : start+end]

	resp := postJSON(router, "/v1/auth/refresh", "", &http.Cookie{Name: "refresh_token", Value: access})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newAuthTestRouter(t)

	resp := postJSON(router, "/v1/auth/logout", "")
	require.Equal(t, http.StatusNoContent, resp.Code)

	cookie := refreshCookie(t, resp)
	require.Empty(t, cookie.Value)
	require.True(t, cookie.MaxAge < 0)
}
