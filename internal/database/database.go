package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"servicematch/internal/logger"
)

// Options tunes Connect. The zero value is the production setup.
type Options struct {
	Silent bool
}

// Connect opens PostgreSQL for postgres:// DSNs and SQLite (pure Go driver) otherwise.
func Connect(dsn string, opts ...Options) (*gorm.DB, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if o.Silent {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	if IsPostgres(dsn) {
		logger.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), gormCfg)
	}

	logger.Info("using SQLite", "dsn", dsn)
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		gormCfg,
	)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; one connection keeps transactions from tripping over table locks.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// IsUniqueViolation reports whether err came from a unique constraint on either backend.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
