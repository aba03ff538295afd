package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/service"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
	"github.com/acadhub/portal-api/pkg/response"
)

// ContentHandler exposes course-material endpoints: metadata CRUD, multipart
// upload and signed-token downloads.
type ContentHandler struct {
	contents *service.ContentService
	metrics  *service.MetricsService
}

// NewContentHandler constructs ContentHandler.
func NewContentHandler(contents *service.ContentService, metrics *service.MetricsService) *ContentHandler {
	return &ContentHandler{contents: contents, metrics: metrics}
}

// List godoc
// @Summary List course contents
// @Tags Contents
// @Produce json
// @Param course_id query string false "Filter by course"
// @Param type query string false "Filter by content type"
// @Param search query string false "Search by title"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /contents [get]
func (h *ContentHandler) List(c *gin.Context) {
	var filter models.ContentFilter
	filter.CourseID = c.Query("course_id")
	if raw := strings.ToUpper(c.Query("type")); raw != "" {
		t := models.ContentType(raw)
		filter.Type = &t
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageParams(c)

	contents, total, err := h.contents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contents, paginationMeta(filter.Page, filter.PageSize, total))
}

// Get godoc
// @Summary Get content detail
// @Tags Contents
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Router /contents/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	content, err := h.contents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content, nil)
}

// Upload godoc
// @Summary Upload course content
// @Description Multipart upload: file plus course_id, title, type and optional chapter fields
// @Tags Contents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Content file"
// @Param course_id formData string true "Course ID"
// @Param title formData string true "Title"
// @Param type formData string true "Content type"
// @Param chapter formData string false "Chapter"
// @Success 201 {object} response.Envelope
// @Router /contents [post]
func (h *ContentHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}

	req := service.UploadContentRequest{
		CourseID: c.PostForm("course_id"),
		Title:    c.PostForm("title"),
		Type:     models.ContentType(strings.ToUpper(c.PostForm("type"))),
	}
	if chapter := c.PostForm("chapter"); chapter != "" {
		req.Chapter = &chapter
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	mime := header.Header.Get("Content-Type")
	content, err := h.contents.Upload(c.Request.Context(), req, header.Filename, mime, header.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordUpload()
	response.Created(c, content)
}

// Update godoc
// @Summary Update content metadata
// @Tags Contents
// @Accept json
// @Produce json
// @Param id path string true "Content ID"
// @Param payload body service.UpdateContentRequest true "Content payload"
// @Success 200 {object} response.Envelope
// @Router /contents/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	var req service.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	content, err := h.contents.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content, nil)
}

// Delete godoc
// @Summary Delete content
// @Tags Contents
// @Produce json
// @Param id path string true "Content ID"
// @Success 204 {object} response.Envelope
// @Router /contents/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.contents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SignedURL godoc
// @Summary Issue a signed download token
// @Tags Contents
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Router /contents/{id}/signed-url [get]
func (h *ContentHandler) SignedURL(c *gin.Context) {
	grant, err := h.contents.SignedURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grant, nil)
}

// Download godoc
// @Summary Download content by signed token
// @Description Public endpoint; the token carries authorization
// @Tags Contents
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Router /contents/download [get]
func (h *ContentHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	content, file, err := h.contents.Resolve(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	var meta struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
		Mime string `json:"mime"`
	}
	if err := json.Unmarshal(content.FileMeta, &meta); err != nil || meta.Name == "" {
		meta.Name = content.Title
	}
	if meta.Mime == "" {
		meta.Mime = "application/octet-stream"
	}

	stat, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read stored file"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Name))
	c.DataFromReader(http.StatusOK, stat.Size(), meta.Mime, file, nil)
}
