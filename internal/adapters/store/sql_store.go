package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// queries holds the dialect-specific statements of a SQL store
type queries struct {
	createTable string
	findAll     string
	upsert      string
	delete      string
	deleteAll   string
}

// SQLStore implements core.BadwordStore on top of database/sql. The
// dialect constructors (NewSQLiteStore, NewMySQLStore, NewPostgresStore)
// open the connection and prepare the schema.
type SQLStore struct {
	db     *sql.DB
	logger *zap.Logger
	q      queries
	name   string
	now    func() time.Time
}

func newSQLStore(db *sql.DB, logger *zap.Logger, name string, q queries) (*SQLStore, error) {
	if _, err := db.Exec(q.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLStore{
		db:     db,
		logger: logger,
		q:      q,
		name:   name,
		now:    time.Now,
	}, nil
}

// FindAll returns every word stored for a chat in creation order
func (s *SQLStore) FindAll(ctx context.Context, chatID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q.findAll, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badwords: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan badword: %w", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate badwords: %w", err)
	}

	return words, nil
}

// Upsert inserts a word unless it is already present
func (s *SQLStore) Upsert(ctx context.Context, chatID int64, word string) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.q.upsert, chatID, word, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert badword: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during upsert", zap.String("store", s.name), zap.Error(err))
		return true, nil
	}
	return n > 0, nil
}

// Delete removes a word from a chat
func (s *SQLStore) Delete(ctx context.Context, chatID int64, word string) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.q.delete, chatID, word)
	if err != nil {
		return 0, fmt.Errorf("failed to delete badword: %w", err)
	}
	return result.RowsAffected()
}

// DeleteAll removes every word of a chat
func (s *SQLStore) DeleteAll(ctx context.Context, chatID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.q.deleteAll, chatID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete badwords: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	s.logger.Debug("Cleared badwords",
		zap.String("store", s.name),
		zap.Int64("chat_id", chatID),
		zap.Int64("removed", n))
	return n, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s database: %w", s.name, err)
	}
	return nil
}
