package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadhub/portal-api/internal/models"
)

func intakeRows(now time.Time) *sqlmock.Rows {
	name := "Ada Lovelace"
	return sqlmock.NewRows([]string{
		"id", "user_id", "type", "status", "full_name", "phone_number", "staff_id",
		"student_id", "department_id", "content_id", "description", "created_at", "updated_at",
	}).AddRow("i1", "u1", string(models.IntakeAccess), string(models.IntakePending), name, "123456", "ST-1",
		nil, nil, nil, nil, now, now)
}

func TestIntakeCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIntakeRepository(db)

	mock.ExpectExec("INSERT INTO intake").WillReturnResult(sqlmock.NewResult(1, 1))

	intake := &models.Intake{UserID: "u1", Type: models.IntakeAccess, Status: models.IntakePending}
	err := repo.Create(context.Background(), intake)
	require.NoError(t, err)
	assert.NotEmpty(t, intake.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntakeListOrdersByStatusRank(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIntakeRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY " + statusRankExpr + ", created_at ASC")).
		WillReturnRows(intakeRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM intake WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	intakes, total, err := repo.List(context.Background(), models.IntakeFilter{})
	require.NoError(t, err)
	assert.Len(t, intakes, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntakeListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIntakeRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("type = $1")).
		WithArgs(models.IntakeLeave, string(models.IntakePending)).
		WillReturnRows(intakeRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(models.IntakeLeave, string(models.IntakePending)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	typ := models.IntakeLeave
	status := models.IntakePending
	_, _, err := repo.List(context.Background(), models.IntakeFilter{Type: &typ, Status: &status})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntakeFindFirstByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIntakeRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 ORDER BY " + statusRankExpr + ", created_at ASC LIMIT 1")).
		WithArgs("u1").
		WillReturnRows(intakeRows(now))

	intake, err := repo.FindFirstByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.IntakePending, intake.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntakeHasOpenComplaint(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIntakeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM intake WHERE content_id = $1 AND type = $2)")).
		WithArgs("c1", models.IntakeComplain).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	reported, err := repo.HasOpenComplaint(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, reported)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntakeDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIntakeRepository(db)

	mock.ExpectExec("DELETE FROM intake").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
