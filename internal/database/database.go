package database

import (
	"fmt"
	"time"

	"equiptrack/internal/config"
	"equiptrack/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the database connection for the configured driver and runs
// the schema migration.
func Init(cfg *config.Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.DBType {
	case "mysql":
		db, err = connectMySQL(cfg)
	case "postgres", "postgresql":
		db, err = connectPostgreSQL(cfg)
	case "sqlite":
		db, err = connectSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	if err != nil {
		return nil, err
	}

	if err := migrateTables(db); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return db, nil
}

// connectMySQL connects to MySQL database
func connectMySQL(cfg *config.Config) (*gorm.DB, error) {
	port := cfg.DBPort
	if port == "" {
		port = "3306"
	}
	user := cfg.DBUser
	if user == "" {
		user = "root"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=10s&readTimeout=30s&writeTimeout=30s",
		user, cfg.DBPassword, cfg.DBHost, port, cfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return configurePool(db)
}

// connectPostgreSQL connects to PostgreSQL database
func connectPostgreSQL(cfg *config.Config) (*gorm.DB, error) {
	port := cfg.DBPort
	if port == "" {
		port = "5432"
	}
	user := cfg.DBUser
	if user == "" {
		user = "postgres"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, port, user, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return configurePool(db)
}

// connectSQLite connects to SQLite database (development fallback)
func connectSQLite(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// configurePool applies connection pool settings. The pool is the only
// shared mutable resource between request handlers and the scheduler.
func configurePool(db *gorm.DB) (*gorm.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// migrateTables creates/updates database tables
func migrateTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Equipment{},
		&models.ServiceEntry{},
	)
}
