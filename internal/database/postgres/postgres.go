package postgres

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"oracle-service/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(cfg config.PostgresConfig) (*sqlx.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBname)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := executeSchema(db); err != nil {
		// Leave room for manual schema management.
		slog.Warn("Failed to execute schema.sql", "error", err)
	}

	slog.Info("Connected to PostgreSQL",
		"host", cfg.Host,
		"port", cfg.Port,
		"dbname", cfg.DBname)

	return db, nil
}

func executeSchema(db *sqlx.DB) error {
	schemaPath := filepath.Join("internal", "database", "postgres", "schema.sql")
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file: %w", err)
	}

	if _, err := db.Exec(string(schema)); err != nil {
		return fmt.Errorf("could not execute schema: %w", err)
	}
	return nil
}
