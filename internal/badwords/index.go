// Package badwords keeps the per-chat badword lists and the compiled
// matchers built from them. The durable list lives in a core.BadwordStore;
// matchers are cached per chat and rebuilt after every change.
package badwords

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/utils"
)

// MaxWordLength is the longest badword in characters every store accepts
const MaxWordLength = 255

var (
	// ErrEmptyWord is returned when a word normalizes to the empty string
	ErrEmptyWord = errors.New("badword is empty")
	// ErrWordTooLong is returned when a word exceeds MaxWordLength
	ErrWordTooLong = fmt.Errorf("badword is longer than %d characters", MaxWordLength)
)

// Index is the per-chat badword index
type Index struct {
	store   core.BadwordStore
	logger  *zap.Logger
	timeout time.Duration

	mu sync.Mutex
	// A present key with a nil matcher means "loaded, no words"
	cache map[int64]*Matcher
	// generations is bumped on every invalidation so a load that raced
	// with a mutation does not install a stale matcher
	generations map[int64]uint64
}

// NewIndex creates an index backed by store. Every store call is bounded
// by timeout when it is positive.
func NewIndex(store core.BadwordStore, logger *zap.Logger, timeout time.Duration) *Index {
	return &Index{
		store:       store,
		logger:      logger,
		timeout:     timeout,
		cache:       make(map[int64]*Matcher),
		generations: make(map[int64]uint64),
	}
}

func (idx *Index) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if idx.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, idx.timeout)
}

// Matcher returns the compiled matcher for a chat, loading it from the
// store on a cache miss. A nil matcher with a nil error means the chat
// has no badwords.
func (idx *Index) Matcher(ctx context.Context, chatID int64) (*Matcher, error) {
	idx.mu.Lock()
	if m, ok := idx.cache[chatID]; ok {
		idx.mu.Unlock()
		return m, nil
	}
	gen := idx.generations[chatID]
	idx.mu.Unlock()

	// Store I/O happens without holding the lock
	ctx, cancel := idx.withTimeout(ctx)
	defer cancel()
	words, err := idx.store.FindAll(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load badwords for chat %d: %w", chatID, err)
	}

	m, err := Compile(words)
	if err != nil {
		return nil, err
	}

	idx.mu.Lock()
	if idx.generations[chatID] == gen {
		idx.cache[chatID] = m
	}
	idx.mu.Unlock()

	idx.logger.Debug("Loaded badword matcher",
		zap.Int64("chat_id", chatID),
		zap.Int("words", len(words)))

	return m, nil
}

// Invalidate drops the cached matcher of a chat so the next lookup
// rebuilds it from the store
func (idx *Index) Invalidate(chatID int64) {
	idx.mu.Lock()
	delete(idx.cache, chatID)
	idx.generations[chatID]++
	idx.mu.Unlock()
}

// Add stores a word for a chat. It reports false when the word was
// already present.
func (idx *Index) Add(ctx context.Context, chatID int64, word string) (bool, error) {
	word = utils.NormalizeText(word)
	if word == "" {
		return false, ErrEmptyWord
	}
	if utf8.RuneCountInString(word) > MaxWordLength {
		return false, ErrWordTooLong
	}

	ctx, cancel := idx.withTimeout(ctx)
	defer cancel()
	added, err := idx.store.Upsert(ctx, chatID, word)
	// Invalidate even on error: the write may have landed
	idx.Invalidate(chatID)
	if err != nil {
		return false, fmt.Errorf("failed to add badword: %w", err)
	}

	idx.logger.Info("Badword added",
		zap.Int64("chat_id", chatID),
		zap.String("word", word),
		zap.Bool("new", added))
	return added, nil
}

// Remove deletes a word from a chat and reports whether it existed
func (idx *Index) Remove(ctx context.Context, chatID int64, word string) (bool, error) {
	word = utils.NormalizeText(word)
	if word == "" {
		return false, ErrEmptyWord
	}

	ctx, cancel := idx.withTimeout(ctx)
	defer cancel()
	n, err := idx.store.Delete(ctx, chatID, word)
	idx.Invalidate(chatID)
	if err != nil {
		return false, fmt.Errorf("failed to remove badword: %w", err)
	}

	idx.logger.Info("Badword removed",
		zap.Int64("chat_id", chatID),
		zap.String("word", word),
		zap.Int64("removed", n))
	return n > 0, nil
}

// List returns the stored words of a chat
func (idx *Index) List(ctx context.Context, chatID int64) ([]string, error) {
	ctx, cancel := idx.withTimeout(ctx)
	defer cancel()
	words, err := idx.store.FindAll(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badwords: %w", err)
	}
	return words, nil
}

// Clear removes every word of a chat and returns how many were removed
func (idx *Index) Clear(ctx context.Context, chatID int64) (int64, error) {
	ctx, cancel := idx.withTimeout(ctx)
	defer cancel()
	n, err := idx.store.DeleteAll(ctx, chatID)
	idx.Invalidate(chatID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear badwords: %w", err)
	}

	idx.logger.Info("Badwords cleared",
		zap.Int64("chat_id", chatID),
		zap.Int64("removed", n))
	return n, nil
}

// Check matches text against the chat's badwords
func (idx *Index) Check(ctx context.Context, chatID int64, text string) (string, bool, error) {
	m, err := idx.Matcher(ctx, chatID)
	if err != nil {
		return "", false, err
	}
	word, ok := m.Match(text)
	return word, ok, nil
}
