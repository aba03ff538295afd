package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/pkg/config"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
)

func newSummarizerService(upstream string) *SummarizerService {
	cfg := config.SummarizerConfig{
		URL:      upstream,
		APIKey:   "key",
		Timeout:  2 * time.Second,
		CacheTTL: time.Hour,
	}
	return NewSummarizerService(cfg, nil, validator.New(), zap.NewNop())
}

func TestSummarizeSuccess(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a concise summary"}]}}]}`))
	}))
	defer server.Close()

	svc := newSummarizerService(server.URL)
	res, err := svc.Summarize(context.Background(), models.SummarizeRequest{LectureText: "long lecture text"})
	require.NoError(t, err)
	assert.Equal(t, "a concise summary", res.Summary)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestSummarizeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := newSummarizerService(server.URL)
	_, err := svc.Summarize(context.Background(), models.SummarizeRequest{LectureText: "text"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
}

func TestSummarizeNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	svc := newSummarizerService(server.URL)
	_, err := svc.Summarize(context.Background(), models.SummarizeRequest{LectureText: "text"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
}

func TestSummarizeValidation(t *testing.T) {
	svc := newSummarizerService("http://unused.example")

	_, err := svc.Summarize(context.Background(), models.SummarizeRequest{})
	require.Error(t, err)

	_, err = svc.Summarize(context.Background(), models.SummarizeRequest{LectureText: "text", Style: "sloppy"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSummarizeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	cfg := config.SummarizerConfig{URL: server.URL, Timeout: 50 * time.Millisecond, CacheTTL: time.Hour}
	svc := NewSummarizerService(cfg, nil, validator.New(), zap.NewNop())

	_, err := svc.Summarize(context.Background(), models.SummarizeRequest{LectureText: "text"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
}
