package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadhub/portal-api/internal/service"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
	"github.com/acadhub/portal-api/pkg/response"
)

// CourseAssignmentHandler exposes lecturer-course assignment endpoints.
type CourseAssignmentHandler struct {
	assignments *service.CourseAssignmentService
}

// NewCourseAssignmentHandler constructs CourseAssignmentHandler.
func NewCourseAssignmentHandler(assignments *service.CourseAssignmentService) *CourseAssignmentHandler {
	return &CourseAssignmentHandler{assignments: assignments}
}

// List godoc
// @Summary List course assignments
// @Tags Course Assignments
// @Produce json
// @Param user_id query string false "Filter by lecturer"
// @Param course_id query string false "Filter by course"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /course-assignments [get]
func (h *CourseAssignmentHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	assignments, total, err := h.assignments.List(c.Request.Context(), c.Query("user_id"), c.Query("course_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, paginationMeta(page, pageSize, total))
}

// Create godoc
// @Summary Assign a lecturer to a course
// @Tags Course Assignments
// @Accept json
// @Produce json
// @Param payload body service.CourseAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /course-assignments [post]
func (h *CourseAssignmentHandler) Create(c *gin.Context) {
	var req service.CourseAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Delete godoc
// @Summary Remove a course assignment
// @Tags Course Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204 {object} response.Envelope
// @Router /course-assignments/{id} [delete]
func (h *CourseAssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
