package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/repository"
	"github.com/acadhub/portal-api/pkg/config"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
)

const defaultSummaryLength = 200

// SummarizerService produces lecture summaries through the Gemini API. The
// upstream call runs under a bounded timeout and results are cached in Redis
// keyed by a digest of the request payload.
type SummarizerService struct {
	cfg        config.SummarizerConfig
	httpClient *http.Client
	cache      *repository.CacheRepository
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// SetMetrics attaches cache hit/miss instrumentation.
func (s *SummarizerService) SetMetrics(m *MetricsService) {
	s.metrics = m
}

// NewSummarizerService constructs a SummarizerService instance.
func NewSummarizerService(cfg config.SummarizerConfig, cache *repository.CacheRepository, validate *validator.Validate, logger *zap.Logger) *SummarizerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SummarizerService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		validator:  validate,
		logger:     logger,
	}
}

// Summarize returns a summary for the lecture text, served from cache when an
// identical request was answered within the TTL.
func (s *SummarizerService) Summarize(ctx context.Context, req models.SummarizeRequest) (*models.SummarizeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid summarize payload")
	}
	if req.Style == "" {
		req.Style = "formal"
	}
	if req.SummaryLength <= 0 {
		req.SummaryLength = defaultSummaryLength
	}

	cacheKey := s.cacheKey(req)
	cached := &models.SummarizeResponse{}
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("summary cache lookup failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	summary, err := s.callUpstream(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &models.SummarizeResponse{Summary: summary}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("summary cache store failed", zap.Error(err))
		}
	}
	return resp, nil
}

func (s *SummarizerService) cacheKey(req models.SummarizeRequest) string {
	digest := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", req.LectureText, req.Style, req.SummaryLength)))
	return "summary:" + hex.EncodeToString(digest[:])
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (s *SummarizerService) callUpstream(ctx context.Context, req models.SummarizeRequest) (string, error) {
	prompt := fmt.Sprintf("Summarize the following lecture in a %s style, in roughly %d words:\n\n%s",
		req.Style, req.SummaryLength, req.LectureText)

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.cfg.APIKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Warn("summarizer upstream call failed", zap.Error(err))
		return "", appErrors.Clone(appErrors.ErrUpstream, "summarizer upstream unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Warn("summarizer upstream error",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return "", appErrors.Clone(appErrors.ErrUpstream, "summarizer upstream returned an error")
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", appErrors.Clone(appErrors.ErrUpstream, "summarizer upstream returned malformed output")
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", appErrors.Clone(appErrors.ErrUpstream, "summarizer upstream returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
