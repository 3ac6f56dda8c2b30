package config

import (
	"strings"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/feedback-server/models"
)

// ConnectDB opens the database named by cfg.Database.URL and migrates it.
// Postgres is the default; a "sqlite:" or "file:" URL (or a path ending in
// .db) selects the embedded sqlite driver.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	dialector := dialectorFor(cfg.Database.URL)

	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.Logging.Level == "debug" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.WrapIf(err, "failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.WrapIf(err, "failed to get database handle")
	}
	if dialector.Name() == "sqlite" {
		// A single connection keeps in-memory databases shared and avoids
		// SQLITE_BUSY under concurrent writes.
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.WithField("driver", dialector.Name()).Info("connected to database & migrated successfully")
	return db, nil
}

// Migrate creates the tables and the indexes gorm tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.WrapIf(err, "failed to migrate")
	}

	// At most one active session per module.
	stmt := "CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active ON sessions (module_id) WHERE is_active"
	if err := db.Exec(stmt).Error; err != nil {
		return errors.WrapIf(err, "failed to create active session index")
	}
	return nil
}

func dialectorFor(url string) gorm.Dialector {
	switch {
	case strings.HasPrefix(url, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite:"))
	case strings.HasPrefix(url, "file:"), strings.HasSuffix(url, ".db"), url == ":memory:":
		return sqlite.Open(url)
	default:
		return postgres.Open(url)
	}
}
