package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/service"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
	"github.com/acadhub/portal-api/pkg/response"
)

// CourseOfferingHandler exposes course-offering endpoints.
type CourseOfferingHandler struct {
	offerings *service.CourseOfferingService
}

// NewCourseOfferingHandler constructs CourseOfferingHandler.
func NewCourseOfferingHandler(offerings *service.CourseOfferingService) *CourseOfferingHandler {
	return &CourseOfferingHandler{offerings: offerings}
}

// List godoc
// @Summary List course offerings
// @Tags Course Offerings
// @Produce json
// @Param course_id query string false "Filter by course"
// @Param department_id query string false "Filter by department"
// @Param year query int false "Filter by year"
// @Param semester query int false "Filter by semester"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /course-offerings [get]
func (h *CourseOfferingHandler) List(c *gin.Context) {
	var filter models.CourseOfferingFilter
	filter.CourseID = c.Query("course_id")
	filter.DepartmentID = c.Query("department_id")
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = &year
	}
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = &semester
	}
	filter.Page, filter.PageSize = pageParams(c)

	offerings, total, err := h.offerings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, paginationMeta(filter.Page, filter.PageSize, total))
}

// Get godoc
// @Summary Get course offering detail
// @Tags Course Offerings
// @Produce json
// @Param id path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /course-offerings/{id} [get]
func (h *CourseOfferingHandler) Get(c *gin.Context) {
	offering, err := h.offerings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

// Create godoc
// @Summary Create course offering
// @Tags Course Offerings
// @Accept json
// @Produce json
// @Param payload body service.CourseOfferingRequest true "Offering payload"
// @Success 201 {object} response.Envelope
// @Router /course-offerings [post]
func (h *CourseOfferingHandler) Create(c *gin.Context) {
	var req service.CourseOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offering, err := h.offerings.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offering)
}

// Update godoc
// @Summary Update course offering
// @Tags Course Offerings
// @Accept json
// @Produce json
// @Param id path string true "Offering ID"
// @Param payload body service.CourseOfferingRequest true "Offering payload"
// @Success 200 {object} response.Envelope
// @Router /course-offerings/{id} [put]
func (h *CourseOfferingHandler) Update(c *gin.Context) {
	var req service.CourseOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offering, err := h.offerings.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

// Delete godoc
// @Summary Delete course offering
// @Tags Course Offerings
// @Produce json
// @Param id path string true "Offering ID"
// @Success 204 {object} response.Envelope
// @Router /course-offerings/{id} [delete]
func (h *CourseOfferingHandler) Delete(c *gin.Context) {
	if err := h.offerings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
