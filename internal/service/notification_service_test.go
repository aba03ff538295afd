package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/models"
	appErrors "github.com/acadhub/portal-api/pkg/errors"
)

type mockNotificationRepo struct {
	active  []string
	batches [][]string
	marked  [][2]string
}

func (m *mockNotificationRepo) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	return nil, 0, nil
}

func (m *mockNotificationRepo) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	return nil, sql.ErrNoRows
}

func (m *mockNotificationRepo) CreateBatch(ctx context.Context, userIDs []string, title, message string, nType models.NotificationType) (int, error) {
	m.batches = append(m.batches, userIDs)
	return len(userIDs), nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	m.marked = append(m.marked, [2]string{id, userID})
	return nil
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockNotificationRepo) ActiveUserIDs(ctx context.Context) ([]string, error) {
	return m.active, nil
}

type mockAudience struct {
	ids []string
}

func (m *mockAudience) AudienceUserIDs(ctx context.Context, courseID string) ([]string, error) {
	return m.ids, nil
}

func TestNotificationBroadcastAllUsers(t *testing.T) {
	repo := &mockNotificationRepo{active: []string{"u1", "u2"}}
	svc := NewNotificationService(repo, &mockAudience{}, validator.New(), zap.NewNop())

	sent, err := svc.Broadcast(context.Background(), models.BroadcastNotificationRequest{
		Title: "t", Message: "m", Type: models.NotificationInfo, AllUsers: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, repo.batches, 1)
	assert.Equal(t, []string{"u1", "u2"}, repo.batches[0])
}

func TestNotificationBroadcastCourseAudience(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, &mockAudience{ids: []string{"u3"}}, validator.New(), zap.NewNop())

	courseID := "c1"
	sent, err := svc.Broadcast(context.Background(), models.BroadcastNotificationRequest{
		Title: "t", Message: "m", Type: models.NotificationReminder, CourseID: &courseID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestNotificationBroadcastRequiresExactlyOneAudience(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, &mockAudience{}, validator.New(), zap.NewNop())

	courseID := "c1"
	_, err := svc.Broadcast(context.Background(), models.BroadcastNotificationRequest{
		Title: "t", Message: "m", Type: models.NotificationInfo, AllUsers: true, CourseID: &courseID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Broadcast(context.Background(), models.BroadcastNotificationRequest{
		Title: "t", Message: "m", Type: models.NotificationInfo,
	})
	require.Error(t, err)
	assert.Empty(t, repo.batches)
}

func TestNotificationBroadcastEmptyAudienceIsNoop(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, &mockAudience{}, validator.New(), zap.NewNop())

	sent, err := svc.Broadcast(context.Background(), models.BroadcastNotificationRequest{
		Title: "t", Message: "m", Type: models.NotificationInfo, AllUsers: true,
	})
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, repo.batches)
}
