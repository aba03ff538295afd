package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/service"
	"github.com/acadhub/portal-api/pkg/config"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
	"github.com/acadhub/portal-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth and OAuth services. The refresh
// token travels in an HttpOnly cookie; only the access token appears in bodies.
type AuthHandler struct {
	auth  *service.AuthService
	oauth *service.OAuthService
	cfg   *config.Config
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth *service.AuthService, oauth *service.OAuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, oauth: oauth, cfg: cfg}
}

// Register godoc
// @Summary Register account
// @Description Create a student account with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	res, pair, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	response.Created(c, res)
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, pair, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	response.JSON(c, http.StatusOK, res, nil)
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchange the refresh-token cookie for a new token pair
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(h.cfg.Cookie.Name)
	if err != nil || token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing refresh token"))
		return
	}

	res, pair, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		h.clearRefreshCookie(c)
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Logout current session
// @Description Clear the refresh-token cookie
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearRefreshCookie(c)
	response.NoContent(c)
}

// Google godoc
// @Summary Sign in with Google
// @Description Authenticate with a Google-signed identity token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.GoogleAuthRequest true "Google payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /auth/google [post]
func (h *AuthHandler) Google(c *gin.Context) {
	var req models.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid google payload"))
		return
	}
	h.authenticate(c, "google", req.IDToken)
}

// GitHub godoc
// @Summary Sign in with GitHub
// @Description Authenticate with a GitHub authorization code
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.GitHubAuthRequest true "GitHub payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /auth/github [post]
func (h *AuthHandler) GitHub(c *gin.Context) {
	var req models.GitHubAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid github payload"))
		return
	}
	h.authenticate(c, "github", req.Code)
}

func (h *AuthHandler) authenticate(c *gin.Context, providerName, credential string) {
	res, pair, err := h.oauth.Authenticate(c.Request.Context(), providerName, credential)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	response.JSON(c, http.StatusOK, res, nil)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.cfg.Cookie.Name,
		token,
		int(h.cfg.JWT.RefreshExpiration.Seconds()),
		h.cfg.Cookie.Path,
		h.cfg.Cookie.Domain,
		h.cfg.Env != config.EnvDevelopment,
		true,
	)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Cookie.Name, "", -1, h.cfg.Cookie.Path, h.cfg.Cookie.Domain, h.cfg.Env != config.EnvDevelopment, true)
}
