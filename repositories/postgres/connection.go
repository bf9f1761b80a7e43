package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/lumapix/photos-api/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check if we can query
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Users table
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Photos table
		CREATE TABLE IF NOT EXISTS photos (
			id BIGSERIAL PRIMARY KEY,
			pexels_id BIGINT NOT NULL UNIQUE,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			url TEXT NOT NULL,
			photographer TEXT NOT NULL,
			photographer_url TEXT NOT NULL,
			photographer_id BIGINT NOT NULL,
			avg_color VARCHAR(10) NOT NULL,
			src_original TEXT NOT NULL,
			src_large2x TEXT NOT NULL,
			src_large TEXT NOT NULL,
			src_medium TEXT NOT NULL,
			src_small TEXT NOT NULL,
			src_portrait TEXT NOT NULL,
			src_landscape TEXT NOT NULL,
			src_tiny TEXT NOT NULL,
			alt TEXT,
			user_id VARCHAR(64) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

		CREATE INDEX IF NOT EXISTS idx_photos_pexels_id ON photos(pexels_id);
		CREATE INDEX IF NOT EXISTS idx_photos_photographer_id ON photos(photographer_id);
		CREATE INDEX IF NOT EXISTS idx_photos_user_id ON photos(user_id);
		CREATE INDEX IF NOT EXISTS idx_photos_created_at ON photos(created_at);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
