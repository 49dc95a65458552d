package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const driver = "pgx"

// pgUniqueViolation is the postgres SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// Connection bundles the two handles the service uses over one pool: sqlx for
// hand-written read models and GORM for repositories.
type Connection struct {
	SQL  *sqlx.DB
	Gorm *gorm.DB
}

// Open connects with retries, applies the pool settings and layers GORM on
// top of the same *sql.DB.
func Open(ctx context.Context, cfg internal.DatabaseConfig, maxRetries int, logger *slog.Logger) (*Connection, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var (
		dbConn  *sqlx.DB
		lastErr error
	)
	for i := 1; i <= maxRetries; i++ {
		dbConn, lastErr = sqlx.ConnectContext(ctx, driver, cfg.GetDSN())
		if lastErr == nil {
			break
		}
		logger.Warn("database connect failed", "attempt", i, "max_retries", maxRetries, "error", lastErr)
		if i < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("database connection failed after %d retries: %w", maxRetries, lastErr)
	}

	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Connection{SQL: dbConn, Gorm: gormDB}, nil
}

func (c *Connection) Close() error {
	return c.SQL.Close()
}

// WithinTransaction runs fn in a GORM transaction bound to ctx. Any error or
// panic rolls the transaction back.
func WithinTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// IsDuplicateKey reports whether err is a unique constraint violation, either
// already translated by GORM or raw from pgx.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
