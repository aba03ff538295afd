package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/service"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
	"github.com/acadhub/portal-api/pkg/response"
)

// IntakeHandler exposes the moderation-queue endpoints.
type IntakeHandler struct {
	intakes *service.IntakeService
	metrics *service.MetricsService
}

// NewIntakeHandler constructs IntakeHandler.
func NewIntakeHandler(intakes *service.IntakeService, metrics *service.MetricsService) *IntakeHandler {
	return &IntakeHandler{intakes: intakes, metrics: metrics}
}

// Create godoc
// @Summary Submit an intake request
// @Tags Intakes
// @Accept json
// @Produce json
// @Param payload body models.CreateIntakeRequest true "Intake payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /intakes [post]
func (h *IntakeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid intake payload"))
		return
	}

	intake, err := h.intakes.Create(c.Request.Context(), claims.UserID, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordIntakeCreated(string(intake.Type))
	response.Created(c, intake)
}

// List godoc
// @Summary List the moderation queue
// @Tags Intakes
// @Produce json
// @Param type query string false "Filter by intake type"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by name or description"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /intakes [get]
func (h *IntakeHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := intakeFilterFromQuery(c)
	intakes, total, err := h.intakes.List(c.Request.Context(), claims.Role, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intakes, paginationMeta(filter.Page, filter.PageSize, total))
}

// Get godoc
// @Summary Get intake detail
// @Tags Intakes
// @Produce json
// @Param id path string true "Intake ID"
// @Success 200 {object} response.Envelope
// @Router /intakes/{id} [get]
func (h *IntakeHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	intake, err := h.intakes.Get(c.Request.Context(), claims.Role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intake, nil)
}

// Update godoc
// @Summary Update or decide an intake
// @Tags Intakes
// @Accept json
// @Produce json
// @Param id path string true "Intake ID"
// @Param payload body models.UpdateIntakeRequest true "Intake payload"
// @Success 200 {object} response.Envelope
// @Router /intakes/{id} [put]
func (h *IntakeHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid intake payload"))
		return
	}

	intake, err := h.intakes.Update(c.Request.Context(), claims.UserID, claims.Role, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.Status != nil {
		h.metrics.RecordIntakeDecision(string(intake.Status))
	}
	response.JSON(c, http.StatusOK, intake, nil)
}

// Delete godoc
// @Summary Delete an intake
// @Tags Intakes
// @Produce json
// @Param id path string true "Intake ID"
// @Success 204 {object} response.Envelope
// @Router /intakes/{id} [delete]
func (h *IntakeHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.intakes.Delete(c.Request.Context(), claims.Role, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CheckUser godoc
// @Summary Check whether a user has an intake on file
// @Description Public endpoint used by login screens to surface pending requests
// @Tags Intakes
// @Accept json
// @Produce json
// @Param payload body models.CheckUserRequest true "Check payload"
// @Success 200 {object} response.Envelope
// @Router /intakes/check-user [post]
func (h *IntakeHandler) CheckUser(c *gin.Context) {
	var req models.CheckUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	res, err := h.intakes.CheckUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ContentReported godoc
// @Summary Check whether content has an open complaint
// @Tags Intakes
// @Produce json
// @Param content_id query string true "Content ID"
// @Success 200 {object} response.Envelope
// @Router /intakes/content-reported [get]
func (h *IntakeHandler) ContentReported(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reported, err := h.intakes.ContentReported(c.Request.Context(), claims.Role, c.Query("content_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"reported": reported}, nil)
}

// Export godoc
// @Summary Export the moderation queue
// @Tags Intakes
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Param type query string false "Filter by intake type"
// @Param status query string false "Filter by status"
// @Success 200 {file} file
// @Router /intakes/export [get]
func (h *IntakeHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	filter := intakeFilterFromQuery(c)

	payload, contentType, err := h.intakes.Export(c.Request.Context(), claims.Role, format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("intakes-%s.%s", time.Now().Format("20060102-150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

func intakeFilterFromQuery(c *gin.Context) models.IntakeFilter {
	var filter models.IntakeFilter
	if raw := strings.ToUpper(c.Query("type")); raw != "" {
		t := models.IntakeType(raw)
		filter.Type = &t
	}
	if raw := strings.ToUpper(c.Query("status")); raw != "" {
		s := models.IntakeStatus(raw)
		filter.Status = &s
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageParams(c)
	return filter
}
