package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/acadhub/portal-api/internal/middleware"
	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/service"
)

type memoryIntakeRepo struct {
	intakes map[string]*models.Intake
}

func newMemoryIntakeRepo() *memoryIntakeRepo {
	return &memoryIntakeRepo{intakes: map[string]*models.Intake{}}
}

func (r *memoryIntakeRepo) Create(_ context.Context, intake *models.Intake) error {
	r.intakes[intake.ID] = intake
	return nil
}

func (r *memoryIntakeRepo) FindByID(_ context.Context, id string) (*models.Intake, error) {
	if intake, ok := r.intakes[id]; ok {
		return intake, nil
	}
	return nil, sql.ErrNoRows
}

func (r *memoryIntakeRepo) Update(_ context.Context, intake *models.Intake) error {
	r.intakes[intake.ID] = intake
	return nil
}

func (r *memoryIntakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.intakes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.intakes, id)
	return nil
}

func (r *memoryIntakeRepo) List(context.Context, models.IntakeFilter) ([]models.Intake, int, error) {
	out := make([]models.Intake, 0, len(r.intakes))
	for _, intake := range r.intakes {
		out = append(out, *intake)
	}
	return out, len(out), nil
}

func (r *memoryIntakeRepo) FindFirstByUser(_ context.Context, userID string) (*models.Intake, error) {
	for _, intake := range r.intakes {
		if intake.UserID == userID {
			return intake, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryIntakeRepo) HasOpenComplaint(_ context.Context, contentID string) (bool, error) {
	for _, intake := range r.intakes {
		if intake.Type == models.IntakeComplain && intake.ContentID != nil && *intake.ContentID == contentID {
			return true, nil
		}
	}
	return false, nil
}

type noopAuditor struct{}

func (noopAuditor) CreateAuditLog(context.Context, *models.AuditLog) error { return nil }

// testAuth injects claims from test headers so routes can exercise the
// service-level access matrix without real tokens.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetHeader("X-Test-Role")
		if role == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		userID := c.GetHeader("X-Test-User")
		if userID == "" {
			userID = "caller-1"
		}
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: userID, Role: models.UserRole(role)})
		c.Next()
	}
}

func newIntakeTestRouter(t *testing.T) (*gin.Engine, *memoryIntakeRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemoryIntakeRepo()
	svc := service.NewIntakeService(repo, noopAuditor{}, nil, zap.NewNop())
	h := NewIntakeHandler(svc, nil)

	r := gin.New()
	intakes := r.Group("/v1/intakes")
	intakes.POST("/check-user", h.CheckUser)
	intakes.GET("/export", testAuth(), h.Export)
	intakes.POST("", testAuth(), h.Create)
	intakes.GET("", testAuth(), h.List)
	intakes.PUT("/:id", testAuth(), h.Update)
	intakes.DELETE("/:id", testAuth(), h.Delete)
	return r, repo
}

func perform(router *gin.Engine, method, path, body, role string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestIntakeCreateAndMissingFields(t *testing.T) {
	router, _ := newIntakeTestRouter(t)

	resp := perform(router, http.MethodPost, "/v1/intakes", `{"type":"FEEDBACK","description":"great course"}`, "STUDENT")
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Contains(t, resp.Body.String(), `"status":"PENDING"`)

	resp = perform(router, http.MethodPost, "/v1/intakes", `{"type":"LEAVE"}`, "LECTURER")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), `"staff_id"`)
	require.Contains(t, resp.Body.String(), `"description"`)
}

func TestIntakeListForbiddenForStudents(t *testing.T) {
	router, _ := newIntakeTestRouter(t)

	resp := perform(router, http.MethodGet, "/v1/intakes", "", "STUDENT")
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = perform(router, http.MethodGet, "/v1/intakes", "", "MODERATOR")
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestIntakeDeleteRequiresModeration(t *testing.T) {
	router, repo := newIntakeTestRouter(t)
	repo.intakes["intake-1"] = &models.Intake{ID: "intake-1", UserID: "u1", Type: models.IntakeFeedback, Status: models.IntakePending}

	resp := perform(router, http.MethodDelete, "/v1/intakes/intake-1", "", "LECTURER")
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = perform(router, http.MethodDelete, "/v1/intakes/intake-1", "", "ADMIN")
	require.Equal(t, http.StatusNoContent, resp.Code)
}

func TestIntakeCheckUserPublic(t *testing.T) {
	router, repo := newIntakeTestRouter(t)
	repo.intakes["intake-1"] = &models.Intake{ID: "intake-1", UserID: "u1", Type: models.IntakeAccess, Status: models.IntakeRejected}

	resp := perform(router, http.MethodPost, "/v1/intakes/check-user", `{"user_id":"u1"}`, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"exists":true`)
	require.Contains(t, resp.Body.String(), `"REJECTED"`)

	resp = perform(router, http.MethodPost, "/v1/intakes/check-user", `{"user_id":"ghost"}`, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"exists":false`)
}

func TestIntakeExportContentType(t *testing.T) {
	router, _ := newIntakeTestRouter(t)

	resp := perform(router, http.MethodGet, "/v1/intakes/export?format=csv", "", "ADMIN")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
	require.Contains(t, resp.Header().Get("Content-Disposition"), "attachment")

	resp = perform(router, http.MethodGet, "/v1/intakes/export?format=xlsx", "", "ADMIN")
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
