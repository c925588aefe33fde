package db

import (
	"fmt"
	"log"
	"strings"
	"time"

	"scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/domain/communityservice"
	"scholarship-backend/internal/domain/disbursement"
	"scholarship-backend/internal/domain/document"
	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/domain/student"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm dialector for driver.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", driver)
}

func OpenGorm(driver, dsn, logLevel string) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	return openGorm(dial, logLevel)
}

// OpenGormWithDialector opens gorm over an existing dialector (tests inject sqlmock here).
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	return openGorm(dial, "warn")
}

func openGorm(dial gorm.Dialector, logLevel string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:  logger.Default.LogMode(parseLogLevel(logLevel)),
		NowFunc: func() time.Time { return time.Now().UTC() },
		// pinged explicitly below, after pool tuning
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Printf("gorm: connected (%s)", dial.Name())
	return db, nil
}

func parseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
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

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&program.Program{},
		&program.DocumentRequirement{},
		&student.Profile{},
		&application.Application{},
		&application.StatusHistory{},
		&document.Upload{},
		&communityservice.Entry{},
		&communityservice.Report{},
		&disbursement.Disbursement{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
