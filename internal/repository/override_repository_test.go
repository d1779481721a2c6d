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

	"github.com/Darlington720/library-module/internal/models"
)

var overrideColumns = []string{"id", "clearance_id", "student_no", "reason", "approved_by", "approved_at", "expires_at", "status"}

func TestOverrideRepositoryAppend(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOverrideRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clearance_overrides")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	override := &models.ClearanceOverride{ClearanceID: "S-1", StudentNumber: "2000100", Reason: "fees waived by senate", ApprovedBy: "admin-1"}
	require.NoError(t, repo.Append(context.Background(), override))
	assert.NotEmpty(t, override.ID)
	assert.Equal(t, models.OverrideStatusActive, override.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryLatest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOverrideRepository(db)
	approvedAt := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM clearance_overrides WHERE clearance_id = $1")).
		WithArgs("S-1").
		WillReturnRows(sqlmock.NewRows(overrideColumns).
			AddRow("o-1", "S-1", "2000100", "fees waived", "admin-1", approvedAt, nil, "active"))

	override, err := repo.Latest(context.Background(), "S-1")
	require.NoError(t, err)
	require.NotNil(t, override)
	assert.Equal(t, "fees waived", override.Reason)
	assert.Nil(t, override.ExpiresAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryLatestNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOverrideRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM clearance_overrides WHERE clearance_id = $1")).
		WithArgs("S-9").
		WillReturnError(sql.ErrNoRows)

	override, err := repo.Latest(context.Background(), "S-9")
	require.NoError(t, err)
	assert.Nil(t, override)
}

func TestOverrideRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOverrideRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM clearance_overrides WHERE student_no = $1")).
		WithArgs("2000100").
		WillReturnRows(sqlmock.NewRows(overrideColumns).
			AddRow("o-2", "S-1", "2000100", "second", "admin-2", time.Now(), nil, "active").
			AddRow("o-1", "S-1", "2000100", "first", "admin-1", time.Now().Add(-time.Hour), nil, "revoked"))

	overrides, err := repo.ListByStudent(context.Background(), "2000100")
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	assert.Equal(t, models.OverrideStatusRevoked, overrides[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
