package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var postgresQueries = queries{
	createTable: `
		CREATE TABLE IF NOT EXISTS badwords (
			chat_id BIGINT NOT NULL,
			word TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (chat_id, word)
		)
	`,
	findAll: `
		SELECT word FROM badwords
		WHERE chat_id = $1
		ORDER BY created_at, word
	`,
	upsert: `
		INSERT INTO badwords (chat_id, word, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, word) DO NOTHING
	`,
	delete:    `DELETE FROM badwords WHERE chat_id = $1 AND word = $2`,
	deleteAll: `DELETE FROM badwords WHERE chat_id = $1`,
}

// NewPostgresStore connects to PostgreSQL and prepares the badwords table
func NewPostgresStore(dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	return newSQLStore(db, logger, "postgres", postgresQueries)
}
