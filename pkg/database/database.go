package database

import (
	"context"
	"fmt"
	"time"

	"github.com/suteetoe/tenantgate/pkg/config"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the PostgreSQL connection, retrying up to ConnectRetries
// times with RetryDelay between attempts.
func InitDB(ctx context.Context, dbConfig *config.DBConfig) (*gorm.DB, error) {
	var db *gorm.DB

	err := retry(ctx, dbConfig.ConnectRetries, dbConfig.RetryDelay, func(attempt int) error {
		var err error
		db, err = open(dbConfig)
		if err != nil {
			logger.GetLogger().Warn("Database connection attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", dbConfig.ConnectRetries),
				zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.GetLogger().Info("Database connected successfully")
	return db, nil
}

func open(dbConfig *config.DBConfig) (*gorm.DB, error) {
	pgConfig := postgres.Config{
		DSN:                  dbConfig.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := Open(postgres.New(pgConfig), dbConfig.LogLevel)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	}

	return db, nil
}

// Open builds a gorm handle over dialector with the settings every
// repository relies on: translated driver errors and timestamps in UTC.
func Open(dialector gorm.Dialector, level gormlogger.LogLevel) (*gorm.DB, error) {
	if level == 0 {
		level = gormlogger.Warn
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(level),
		TranslateError:         true,
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
