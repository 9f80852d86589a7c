package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps *gorm.DB for the audit store (DecisionAudit, BacktestRun).
// It never holds PlayerState or FeedEnvelope data — those are file
// artifacts with their own lifecycle.
type DB struct {
	*gorm.DB
}

// NewConnection opens a postgres connection when databaseURL is set,
// otherwise falls back to the sqlite file at sqlitePath. Exactly one
// of the two paths is used; sqlite is the default for local/dev use
// since the audit trail has no multi-process writer requirement there.
func NewConnection(databaseURL, sqlitePath string, isDevelopment bool) (*DB, error) {
	logLevel := logger.Error
	if isDevelopment {
		logLevel = logger.Info
	}

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		db  *gorm.DB
		err error
	)

	if strings.TrimSpace(databaseURL) != "" {
		gormCfg.PrepareStmt = true
		db, err = gorm.Open(postgres.Open(databaseURL), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("audit database connection established")

	return &DB{db}, nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
