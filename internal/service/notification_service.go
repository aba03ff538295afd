package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
)

type notificationRepository interface {
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	CreateBatch(ctx context.Context, userIDs []string, title, message string, nType models.NotificationType) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
	ActiveUserIDs(ctx context.Context) ([]string, error)
}

type audienceResolver interface {
	AudienceUserIDs(ctx context.Context, courseID string) ([]string, error)
}

// NotificationService fans messages out to audiences and serves per-user
// inboxes.
type NotificationService struct {
	repo      notificationRepository
	audience  audienceResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs a NotificationService instance.
func NewNotificationService(repo notificationRepository, audience audienceResolver, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NotificationService{repo: repo, audience: audience, validator: validate, logger: logger}
}

// ListMine returns the caller's inbox.
func (s *NotificationService) ListMine(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, int, error) {
	filter.UserID = userID
	notifications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, total, nil
}

// Broadcast resolves the audience and inserts every row in one statement. The
// audience is either all active users, a course's cohorts, or an explicit id
// list; exactly one must be given.
func (s *NotificationService) Broadcast(ctx context.Context, req models.BroadcastNotificationRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}
	if !req.Type.Valid() {
		return 0, appErrors.WithFields(map[string]string{"type": "unknown notification type"}, "validation failed")
	}

	userIDs, err := s.resolveAudience(ctx, req)
	if err != nil {
		return 0, err
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	sent, err := s.repo.CreateBatch(ctx, userIDs, req.Title, req.Message, req.Type)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send notifications")
	}
	s.logger.Info("notifications sent", zap.Int("count", sent), zap.String("type", string(req.Type)))
	return sent, nil
}

// MarkRead flips the read flag on the caller's notification.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification")
	}
	return nil
}

// Delete removes a notification.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}

func (s *NotificationService) resolveAudience(ctx context.Context, req models.BroadcastNotificationRequest) ([]string, error) {
	targets := 0
	if req.AllUsers {
		targets++
	}
	if req.CourseID != nil {
		targets++
	}
	if len(req.UserIDs) > 0 {
		targets++
	}
	if targets != 1 {
		return nil, appErrors.WithFields(map[string]string{"audience": "provide exactly one of all_users, course_id or user_id"}, "validation failed")
	}

	switch {
	case req.AllUsers:
		ids, err := s.repo.ActiveUserIDs(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve audience")
		}
		return ids, nil
	case req.CourseID != nil:
		ids, err := s.audience.AudienceUserIDs(ctx, *req.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve audience")
		}
		return ids, nil
	default:
		return req.UserIDs, nil
	}
}
