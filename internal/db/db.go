package db

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/skillswap/internal/config"
)

// NewDB opens the SQL backend selected by cfg.Store.Backend and migrates
// the records table.
func NewDB(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		dialector = sqlite.Open(cfg.Store.SQLitePath)
	case config.BackendMySQL:
		dialector = mysql.Open(cfg.DB.DSN)
	default:
		return nil, fmt.Errorf("backend %q is not a SQL backend", cfg.Store.Backend)
	}

	level := gormlogger.Warn
	if cfg.DB.Debug {
		level = gormlogger.Info // log SQL queries
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(log, level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate ensures the schema is in sync with Record.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
