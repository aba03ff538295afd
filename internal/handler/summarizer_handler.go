package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/service"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
	"github.com/acadhub/portal-api/pkg/response"
)

// SummarizerHandler exposes the lecture-summary endpoint.
type SummarizerHandler struct {
	summarizer *service.SummarizerService
}

// NewSummarizerHandler constructs SummarizerHandler.
func NewSummarizerHandler(summarizer *service.SummarizerService) *SummarizerHandler {
	return &SummarizerHandler{summarizer: summarizer}
}

// Summarize godoc
// @Summary Summarize lecture text
// @Tags Summarizer
// @Accept json
// @Produce json
// @Param payload body models.SummarizeRequest true "Summarize payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /summarizer/summarize [post]
func (h *SummarizerHandler) Summarize(c *gin.Context) {
	var req models.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid summarize payload"))
		return
	}

	res, err := h.summarizer.Summarize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
