package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tenantgate/pkg/database"
	"github.com/suteetoe/tenantgate/pkg/database/dbtest"
)

func TestMigrationsAreOrdered(t *testing.T) {
	migrations, err := database.Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, "0001_init", migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS companies")
	assert.Contains(t, migrations[0].SQL, "ON DELETE CASCADE")

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestMigrateAppliesPending(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	migrations, err := database.Migrations()
	require.NoError(t, err)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	for _, m := range migrations {
		mock.ExpectBegin()
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS companies`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO schema_migrations`).
			WithArgs(m.Version).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	require.NoError(t, database.Migrate(context.Background(), db))
}

func TestMigrateSkipsApplied(t *testing.T) {
	db, mock := dbtest.NewMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_init"))

	require.NoError(t, database.Migrate(context.Background(), db))
}

func TestMigrateRollsBackFailure(t *testing.T) {
	db, mock := dbtest.NewMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS companies`).
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err := database.Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_init")
}
