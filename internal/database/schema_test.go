package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchema_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS alert_rules`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS alert_history`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_alert_history_rule_sent_at`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, InitSchema(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchema_StopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS alert_rules`).WillReturnError(errors.New("permission denied"))

	err = InitSchema(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize alert schema")
	assert.Contains(t, err.Error(), "permission denied")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
