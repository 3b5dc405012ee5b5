package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWipesRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresWipesRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresWipesRepository(db)
}

func TestRegisterWipe_ClosesPreviousAndInserts(t *testing.T) {
	db, mock, repo := setupWipesRepo(t)
	defer db.Close()

	wipedAt := time.Date(2026, 3, 5, 19, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("srv-1", 42).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE server_wipes SET ended_at`).
		WithArgs("srv-1", wipedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO server_wipes`).
		WithArgs(sqlmock.AnyArg(), "srv-1", 42, wipedAt, `{"seed":123}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	wipeID, err := repo.RegisterWipe(context.Background(), &domain.ServerWipe{
		ServerID:   "srv-1",
		WipeNumber: 42,
		WipedAt:    wipedAt,
		Metadata:   json.RawMessage(`{"seed":123}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, wipeID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterWipe_DuplicateNumberLeavesExistingUntouched(t *testing.T) {
	db, mock, repo := setupWipesRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("srv-1", 42).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.RegisterWipe(context.Background(), &domain.ServerWipe{
		ServerID:   "srv-1",
		WipeNumber: 42,
		WipedAt:    time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateWipeNumber)

	// 没有 UPDATE/INSERT 被执行
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrentWipe_OpenRow(t *testing.T) {
	db, mock, repo := setupWipesRepo(t)
	defer db.Close()

	wipedAt := time.Date(2026, 3, 5, 19, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"wipe_id", "server_id", "wipe_number", "wiped_at", "ended_at", "metadata"}).
		AddRow("wipe-1", "srv-1", 42, wipedAt, nil, `{}`)

	mock.ExpectQuery(`SELECT .+ FROM server_wipes WHERE server_id = \$1 AND ended_at IS NULL`).
		WithArgs("srv-1").
		WillReturnRows(rows)

	w, err := repo.CurrentWipe(context.Background(), "srv-1")
	require.NoError(t, err)
	assert.Equal(t, 42, w.WipeNumber)
	assert.Nil(t, w.EndedAt)
	assert.Equal(t, 2*time.Hour, w.Elapsed(wipedAt.Add(2*time.Hour)))
}

func TestCurrentWipe_NoneOpen(t *testing.T) {
	db, mock, repo := setupWipesRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM server_wipes`).
		WithArgs("srv-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.CurrentWipe(context.Background(), "srv-1")
	assert.ErrorIs(t, err, domain.ErrWipeNotFound)
}
