package store

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlQueries = queries{
	createTable: `
		CREATE TABLE IF NOT EXISTS badwords (
			chat_id BIGINT NOT NULL,
			word VARCHAR(255) NOT NULL,
			created_at TIMESTAMP(6) NOT NULL,
			PRIMARY KEY (chat_id, word)
		) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin
	`,
	findAll: `
		SELECT word FROM badwords
		WHERE chat_id = ?
		ORDER BY created_at, word
	`,
	upsert: `
		INSERT IGNORE INTO badwords (chat_id, word, created_at)
		VALUES (?, ?, ?)
	`,
	delete:    `DELETE FROM badwords WHERE chat_id = ? AND word = ?`,
	deleteAll: `DELETE FROM badwords WHERE chat_id = ?`,
}

// NewMySQLStore connects to MySQL and prepares the badwords table
func NewMySQLStore(dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	return newSQLStore(db, logger, "mysql", mysqlQueries)
}
