package database

import (
	"database/sql"
	"fmt"
	"time"

	"discount-rules-service/internal/config"
	"discount-rules-service/internal/logger"

	_ "github.com/lib/pq"
)

// DB оборачивает *sql.DB для подключения к PostgreSQL.
type DB struct {
	*sql.DB
}

// Connect открывает подключение к базе данных и проверяет его.
func Connect(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Successfully connected to database")

	return &DB{DB: db}, nil
}

// Close закрывает подключение к базе данных.
func (d *DB) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// Health проверяет доступность базы данных.
func (d *DB) Health() error {
	if d == nil || d.DB == nil {
		return fmt.Errorf("database is not initialized")
	}
	return d.Ping()
}
