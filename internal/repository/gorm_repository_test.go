package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/internal/repository"
	"github.com/suteetoe/tenantgate/pkg/database/dbtest"
)

var companyColumns = []string{"id", "name", "domain", "description", "logo", "status", "created_at", "updated_at"}

func TestTenantRepositoryListNewestFirst(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "companies" ORDER BY created_at DESC,id DESC`).
		WillReturnRows(sqlmock.NewRows(companyColumns).
			AddRow(2, "Beta", "beta.test", "", "", "active", now, now).
			AddRow(1, "Acme", "acme.test", "", "", "suspended", now.Add(-time.Hour), now))

	companies, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "beta.test", companies[0].Domain)
	assert.Equal(t, model.StatusSuspended, companies[1].Status)
}

func TestTenantRepositoryListActive(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "companies" WHERE status = \$1 ORDER BY created_at ASC,id ASC`).
		WithArgs(model.StatusActive).
		WillReturnRows(sqlmock.NewRows(companyColumns).
			AddRow(1, "Acme", "acme.test", "", "", "active", now, now))

	companies, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, uint(1), companies[0].ID)
}

func TestTenantRepositoryFindByDomain(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "companies" WHERE domain = \$1`).
		WillReturnRows(sqlmock.NewRows(companyColumns).
			AddRow(3, "Acme", "acme.test", "desc", "logo.png", "active", now, now))

	company, err := repo.FindByDomain(context.Background(), "acme.test")
	require.NoError(t, err)
	assert.Equal(t, uint(3), company.ID)
	assert.Equal(t, "logo.png", company.Logo)
}

func TestTenantRepositoryFindByDomainNotFound(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "companies" WHERE domain = \$1`).
		WillReturnRows(sqlmock.NewRows(companyColumns))

	company, err := repo.FindByDomain(context.Background(), "missing.test")
	assert.Nil(t, company)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTenantRepositoryFindByIDNotFound(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "companies" WHERE "companies"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(companyColumns))

	_, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTenantRepositoryCreate(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	mock.ExpectQuery(`INSERT INTO "companies"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	company := &model.Company{Name: "Acme", Domain: "acme.test"}
	require.NoError(t, repo.Create(context.Background(), company))
	assert.Equal(t, uint(7), company.ID)
	assert.Equal(t, model.StatusActive, company.Status)
}

func TestTenantRepositoryCreateDuplicateDomain(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	mock.ExpectQuery(`INSERT INTO "companies"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "companies_domain_key"})

	err := repo.Create(context.Background(), &model.Company{Name: "Acme", Domain: "acme.test"})
	assert.ErrorIs(t, err, repository.ErrDuplicateDomain)
}

func TestTenantRepositoryUpdate(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	mock.ExpectExec(`UPDATE "companies" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	company := &model.Company{ID: 1, Name: "Acme", Domain: "acme.test", Status: model.StatusSuspended}
	require.NoError(t, repo.Update(context.Background(), company))
	assert.False(t, company.UpdatedAt.IsZero())
}

func TestTenantRepositoryUpdateMissing(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	mock.ExpectExec(`UPDATE "companies" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &model.Company{ID: 9, Name: "x", Domain: "x", Status: model.StatusActive})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTenantRepositoryDelete(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	mock.ExpectExec(`DELETE FROM "companies" WHERE "companies"."id" = \$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "companies" WHERE "companies"."id" = \$1`).
		WithArgs(6).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.ErrorIs(t, repo.Delete(context.Background(), 6), repository.ErrNotFound)
}

func TestTenantRepositoryPassesThroughOtherErrors(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormTenantRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT \* FROM "companies"`).WillReturnError(boom)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestLogRepositoryCreate(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormLogRepository(db)

	mock.ExpectQuery(`INSERT INTO "logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	entry := &model.Log{Username: "admin", Success: true, IPAddress: "127.0.0.1", CompanyID: 1}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.Equal(t, uint(11), entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestLogRepositoryListRecent(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormLogRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "logs" WHERE company_id = \$1 ORDER BY timestamp DESC,id DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "success", "ip_address", "user_agent", "timestamp", "company_id"}).
			AddRow(2, "admin", true, "10.0.0.1", "curl", now, 1).
			AddRow(1, "bob", false, "10.0.0.2", "curl", now.Add(-time.Minute), 1))

	logs, err := repo.ListRecent(context.Background(), 1, 50)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)
	assert.False(t, logs[1].Success)
}

func TestMetaUserRepositoryFirstOrCreate(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormMetaUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "meta_users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}))
	mock.ExpectQuery(`INSERT INTO "meta_users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	user, created, err := repo.FirstOrCreate(context.Background(), "admin", "qwerty")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint(1), user.ID)
}

func TestMetaUserRepositoryFirstOrCreateExisting(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := repository.NewGormMetaUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "meta_users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}).AddRow(4, "admin", "qwerty"))

	user, created, err := repo.FirstOrCreate(context.Background(), "admin", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "qwerty", user.Password)
}
