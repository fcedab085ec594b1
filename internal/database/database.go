package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Neutralizer/BookManipulator/internal/config"
	"github.com/Neutralizer/BookManipulator/internal/entities"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrMissingDSN        = errors.New("database DSN is required for mysql")
	ErrMissingPath       = errors.New("database path is required for sqlite")
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens a sqlite database at dbPath and migrates the schema.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(config.Database{
		Driver:   config.DriverSQLite,
		Path:     dbPath,
		LogLevel: "silent",
	})
}

// Open connects using the configured driver and migrates the schema.
func Open(cfg config.Database) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.User{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{DB: db}, nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.DriverName() {
	case config.DriverSQLite:
		if cfg.Path == "" {
			return nil, ErrMissingPath
		}
		return sqlite.Open(cfg.Path), nil
	case config.DriverMySQL:
		if cfg.DSN == "" {
			return nil, ErrMissingDSN
		}
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Ping checks that the underlying connection is alive.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
