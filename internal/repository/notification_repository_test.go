package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadhub/portal-api/internal/models"
)

func TestNotificationCreateBatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications (id, user_id, title, message, type, created_at, updated_at)")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	sent, err := repo.CreateBatch(context.Background(), []string{"u1", "u2", "u3"}, "title", "msg", models.NotificationInfo)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationCreateBatchEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	sent, err := repo.CreateBatch(context.Background(), nil, "title", "msg", models.NotificationInfo)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "message", "type", "is_read", "created_at", "updated_at"}).
		AddRow("n1", "u1", "title", "msg", string(models.NotificationAlert), false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE 1=1 AND user_id = $1 ORDER BY created_at DESC")).
		WithArgs("u1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	notifications, total, err := repo.List(context.Background(), models.NotificationFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkRead(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET is_read = TRUE")).
		WithArgs(sqlmock.AnyArg(), "n1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkRead(context.Background(), "n1", "u1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
