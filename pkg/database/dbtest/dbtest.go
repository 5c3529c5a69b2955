// Package dbtest builds gorm handles backed by go-sqlmock for repository tests.
package dbtest

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/suteetoe/tenantgate/pkg/database"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewMock returns a postgres-dialect gorm handle whose statements are
// matched against the returned sqlmock expectations (regular expressions).
// Unmet expectations fail the test at cleanup.
func NewMock(t testing.TB) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	db, err := database.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), gormlogger.Silent)
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}

	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		sqlDB.Close()
	})

	return db, mock
}
