package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
	"github.com/acadhub/portal-api/pkg/storage"
)

type contentRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error)
	FindByID(ctx context.Context, id string) (*models.Content, error)
	Create(ctx context.Context, content *models.Content) error
	Update(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, id string) error
}

// UploadContentRequest carries the metadata half of a multipart upload.
type UploadContentRequest struct {
	CourseID string             `json:"course_id" validate:"required"`
	Title    string             `json:"title" validate:"required"`
	Type     models.ContentType `json:"type" validate:"required"`
	Chapter  *string            `json:"chapter"`
}

// UpdateContentRequest patches content metadata without touching the file.
type UpdateContentRequest struct {
	Title   *string             `json:"title"`
	Type    *models.ContentType `json:"type"`
	Chapter *string             `json:"chapter"`
}

// SignedContentURL is the time-limited download grant for a stored file.
type SignedContentURL struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type fileMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Mime string `json:"mime"`
}

// ContentService manages course materials: file persistence, metadata and
// HMAC-signed download grants.
type ContentService struct {
	repo      contentRepository
	courses   courseRepository
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	maxBytes  int64
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContentService constructs a ContentService instance.
func NewContentService(repo contentRepository, courses courseRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, maxBytes int64, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ContentService{repo: repo, courses: courses, store: store, signer: signer, maxBytes: maxBytes, validator: validate, logger: logger}
}

// List returns content records matching the filter.
func (s *ContentService) List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error) {
	contents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contents")
	}
	return contents, total, nil
}

// Get returns a content record by id.
func (s *ContentService) Get(ctx context.Context, id string) (*models.Content, error) {
	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch content")
	}
	return content, nil
}

// Upload stores the file under a content-scoped path and records its metadata.
func (s *ContentService) Upload(ctx context.Context, req UploadContentRequest, filename, mime string, size int64, file io.Reader) (*models.Content, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.WithFields(map[string]string{"type": "unknown content type"}, "validation failed")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, appErrors.WithFields(map[string]string{"file": fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes)}, "validation failed")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithFields(map[string]string{"course_id": "course not found"}, "validation failed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}

	contentID := uuid.NewString()
	relPath := filepath.Join(req.CourseID, contentID+filepath.Ext(filename))
	if _, err := s.store.SaveStream(relPath, file); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	meta, _ := json.Marshal(fileMeta{Name: filename, Size: size, Mime: mime})
	content := &models.Content{
		ID:       contentID,
		CourseID: req.CourseID,
		Title:    req.Title,
		Type:     req.Type,
		Path:     relPath,
		Chapter:  req.Chapter,
		FileMeta: meta,
	}
	if err := s.repo.Create(ctx, content); err != nil {
		if cleanupErr := s.store.Delete(relPath); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned file", zap.String("path", relPath), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create content")
	}
	return content, nil
}

// Update patches metadata.
func (s *ContentService) Update(ctx context.Context, id string, req UpdateContentRequest) (*models.Content, error) {
	content, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		content.Title = *req.Title
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, appErrors.WithFields(map[string]string{"type": "unknown content type"}, "validation failed")
		}
		content.Type = *req.Type
	}
	if req.Chapter != nil {
		content.Chapter = req.Chapter
	}
	if err := s.repo.Update(ctx, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content")
	}
	return content, nil
}

// Delete removes the record and its stored file.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	content, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete content")
	}
	if err := s.store.Delete(content.Path); err != nil {
		s.logger.Warn("failed to remove stored file", zap.String("path", content.Path), zap.Error(err))
	}
	return nil
}

// SignedURL issues a time-limited download token for the content's file.
func (s *ContentService) SignedURL(ctx context.Context, id string) (*SignedContentURL, error) {
	content, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(content.ID, content.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign url")
	}
	return &SignedContentURL{Token: token, ExpiresAt: expiresAt}, nil
}

// Resolve validates a download token and opens the underlying file.
func (s *ContentService) Resolve(ctx context.Context, token string) (*models.Content, *os.File, error) {
	contentID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	content, err := s.Get(ctx, contentID)
	if err != nil {
		return nil, nil, err
	}
	if content.Path != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.store.Open(content.Path)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return content, file, nil
}
