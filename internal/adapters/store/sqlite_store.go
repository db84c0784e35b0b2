package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteQueries = queries{
	createTable: `
		CREATE TABLE IF NOT EXISTS badwords (
			chat_id INTEGER NOT NULL,
			word TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (chat_id, word)
		)
	`,
	findAll: `
		SELECT word FROM badwords
		WHERE chat_id = ?
		ORDER BY created_at, word
	`,
	upsert: `
		INSERT OR IGNORE INTO badwords (chat_id, word, created_at)
		VALUES (?, ?, ?)
	`,
	delete:    `DELETE FROM badwords WHERE chat_id = ? AND word = ?`,
	deleteAll: `DELETE FROM badwords WHERE chat_id = ?`,
}

// NewSQLiteStore opens (or creates) a SQLite badword store at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	return newSQLStore(db, logger, "sqlite", sqliteQueries)
}
