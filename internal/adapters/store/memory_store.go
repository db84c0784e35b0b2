package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/core"
)

// MemoryStore is an in-memory implementation of core.BadwordStore.
// Contents are lost on restart.
type MemoryStore struct {
	entries map[int64][]core.BadwordEntry
	mu      sync.RWMutex
	logger  *zap.Logger
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64][]core.BadwordEntry),
		logger:  logger,
		now:     time.Now,
	}
}

// FindAll returns every word stored for a chat in insertion order
func (s *MemoryStore) FindAll(ctx context.Context, chatID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[chatID]
	words := make([]string, 0, len(entries))
	for _, e := range entries {
		words = append(words, e.Word)
	}
	return words, nil
}

// Upsert inserts a word unless it is already present
func (s *MemoryStore) Upsert(ctx context.Context, chatID int64, word string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries[chatID] {
		if e.Word == word {
			return false, nil
		}
	}
	s.entries[chatID] = append(s.entries[chatID], core.BadwordEntry{
		ChatID:    chatID,
		Word:      word,
		CreatedAt: s.now(),
	})
	return true, nil
}

// Delete removes a word from a chat
func (s *MemoryStore) Delete(ctx context.Context, chatID int64, word string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[chatID]
	for i, e := range entries {
		if e.Word != word {
			continue
		}
		entries = append(entries[:i:i], entries[i+1:]...)
		if len(entries) == 0 {
			delete(s.entries, chatID)
		} else {
			s.entries[chatID] = entries
		}
		return 1, nil
	}
	return 0, nil
}

// DeleteAll removes every word of a chat
func (s *MemoryStore) DeleteAll(ctx context.Context, chatID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.entries[chatID]))
	delete(s.entries, chatID)

	s.logger.Debug("Cleared badwords", zap.Int64("chat_id", chatID), zap.Int64("removed", n))
	return n, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}
