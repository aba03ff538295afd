package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadhub/portal-api/internal/service"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
	"github.com/acadhub/portal-api/pkg/response"
)

// SavedCourseHandler exposes bookmark endpoints scoped to the caller.
type SavedCourseHandler struct {
	saved *service.SavedCourseService
}

// NewSavedCourseHandler constructs SavedCourseHandler.
func NewSavedCourseHandler(saved *service.SavedCourseService) *SavedCourseHandler {
	return &SavedCourseHandler{saved: saved}
}

// List godoc
// @Summary List saved courses
// @Tags Saved Courses
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /saved-courses [get]
func (h *SavedCourseHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, pageSize := pageParams(c)
	saved, total, err := h.saved.List(c.Request.Context(), claims.UserID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, paginationMeta(page, pageSize, total))
}

// Save godoc
// @Summary Bookmark a course
// @Description Idempotent: saving an already-saved course returns the existing bookmark
// @Tags Saved Courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Router /saved-courses/{courseId} [post]
func (h *SavedCourseHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	saved, err := h.saved.Save(c.Request.Context(), claims.UserID, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// Remove godoc
// @Summary Remove a bookmark
// @Tags Saved Courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 204 {object} response.Envelope
// @Router /saved-courses/{courseId} [delete]
func (h *SavedCourseHandler) Remove(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.saved.Remove(c.Request.Context(), claims.UserID, c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
