package badwords

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/adapters/store"
	"github.com/mikey/group-guard/internal/core"
)

// countingStore wraps a store and counts FindAll calls
type countingStore struct {
	core.BadwordStore
	loads   atomic.Int32
	findErr error
}

func (s *countingStore) FindAll(ctx context.Context, chatID int64) ([]string, error) {
	s.loads.Add(1)
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.BadwordStore.FindAll(ctx, chatID)
}

// blockingStore holds its first FindAll after reading the words until
// release is closed
type blockingStore struct {
	core.BadwordStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) FindAll(ctx context.Context, chatID int64) ([]string, error) {
	words, err := s.BadwordStore.FindAll(ctx, chatID)
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return words, err
}

func newTestIndex() (*Index, *countingStore) {
	cs := &countingStore{BadwordStore: store.NewMemoryStore(zap.NewNop())}
	return NewIndex(cs, zap.NewNop(), time.Second), cs
}

func TestCompile(t *testing.T) {
	m, err := Compile(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = Compile([]string{"  ", ""})
	require.NoError(t, err)
	assert.Nil(t, m, "only blank words yields no matcher")

	m, err = Compile([]string{"ab", "ABC", "abc", "a.b"})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, []string{"abc", "a.b", "ab"}, m.Words())
}

func TestMatcherWholeWord(t *testing.T) {
	m, err := Compile([]string{"ab", "abc", "free money"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		word  string
		ok    bool
	}{
		{"embedded in word", "xabcx", "", false},
		{"longer word preferred", "abc def", "abc", true},
		{"shorter word alone", "x ab y", "ab", true},
		{"case insensitive", "ABC!", "abc", true},
		{"punctuation boundary", "(ab)", "ab", true},
		{"underscore is a word char", "ab_c", "", false},
		{"phrase across whitespace", "get FREE \t money now", "free money", true},
		{"clean", "hello world", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, ok := m.Match(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.word, word)
		})
	}
}

func TestMatcherQuotesMeta(t *testing.T) {
	m, err := Compile([]string{"a.b"})
	require.NoError(t, err)

	_, ok := m.Match("axb")
	assert.False(t, ok)
	_, ok = m.Match("say a.b now")
	assert.True(t, ok)
}

func TestNilMatcherNeverMatches(t *testing.T) {
	var m *Matcher
	_, ok := m.Match("anything")
	assert.False(t, ok)
	assert.Nil(t, m.Words())
}

func TestIndexAddRemoveClear(t *testing.T) {
	idx, _ := newTestIndex()
	ctx := context.Background()
	const chat = int64(-100)

	m, err := idx.Matcher(ctx, chat)
	require.NoError(t, err)
	assert.Nil(t, m)

	added, err := idx.Add(ctx, chat, "  X ")
	require.NoError(t, err)
	assert.True(t, added)

	m, err = idx.Matcher(ctx, chat)
	require.NoError(t, err)
	_, ok := m.Match("this has x in it")
	assert.True(t, ok)

	added, err = idx.Add(ctx, chat, "x")
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := idx.Remove(ctx, chat, "x")
	require.NoError(t, err)
	assert.True(t, removed)

	m, err = idx.Matcher(ctx, chat)
	require.NoError(t, err)
	_, ok = m.Match("this has x in it")
	assert.False(t, ok)

	removed, err = idx.Remove(ctx, chat, "x")
	require.NoError(t, err)
	assert.False(t, removed)

	for _, w := range []string{"one", "two", "three"} {
		_, err := idx.Add(ctx, chat, w)
		require.NoError(t, err)
	}
	words, err := idx.List(ctx, chat)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, words)

	n, err := idx.Clear(ctx, chat)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	m, err = idx.Matcher(ctx, chat)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestIndexRejectsEmptyWord(t *testing.T) {
	idx, _ := newTestIndex()
	_, err := idx.Add(context.Background(), 1, " \t ")
	assert.ErrorIs(t, err, ErrEmptyWord)
	_, err = idx.Remove(context.Background(), 1, "")
	assert.ErrorIs(t, err, ErrEmptyWord)
}

func TestIndexCachesEmptyResult(t *testing.T) {
	idx, cs := newTestIndex()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m, err := idx.Matcher(ctx, 5)
		require.NoError(t, err)
		assert.Nil(t, m)
	}
	assert.Equal(t, int32(1), cs.loads.Load(), "an empty chat is loaded once")

	idx.Invalidate(5)
	_, err := idx.Matcher(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(2), cs.loads.Load())
}

func TestIndexChatsAreIndependent(t *testing.T) {
	idx, _ := newTestIndex()
	ctx := context.Background()

	_, err := idx.Add(ctx, 1, "foo")
	require.NoError(t, err)

	m, err := idx.Matcher(ctx, 2)
	require.NoError(t, err)
	_, ok := m.Match("foo")
	assert.False(t, ok)
}

func TestIndexLoadError(t *testing.T) {
	idx, cs := newTestIndex()
	cs.findErr = errors.New("connection refused")

	m, err := idx.Matcher(context.Background(), 1)
	assert.Error(t, err)
	assert.Nil(t, m)

	cs.findErr = nil
	m, err = idx.Matcher(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, m, "a failed load is not cached")
	assert.Equal(t, int32(2), cs.loads.Load())
}

func TestIndexLoadRacingAddIsNotCached(t *testing.T) {
	bs := &blockingStore{
		BadwordStore: store.NewMemoryStore(zap.NewNop()),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	idx := NewIndex(bs, zap.NewNop(), time.Second)
	ctx := context.Background()
	const chat = int64(-100)

	type loadResult struct {
		m   *Matcher
		err error
	}
	done := make(chan loadResult, 1)
	go func() {
		m, err := idx.Matcher(ctx, chat)
		done <- loadResult{m, err}
	}()

	<-bs.entered
	added, err := idx.Add(ctx, chat, "scam")
	require.NoError(t, err)
	require.True(t, added)
	close(bs.release)

	// The racing load read the list before the add
	res := <-done
	require.NoError(t, res.err)
	assert.Nil(t, res.m)

	m, err := idx.Matcher(ctx, chat)
	require.NoError(t, err)
	require.NotNil(t, m)
	word, ok := m.Match("total scam here")
	assert.True(t, ok)
	assert.Equal(t, "scam", word)
}

func TestIndexRejectsLongWord(t *testing.T) {
	idx, _ := newTestIndex()

	_, err := idx.Add(context.Background(), -100, strings.Repeat("x", MaxWordLength+1))
	assert.ErrorIs(t, err, ErrWordTooLong)

	added, err := idx.Add(context.Background(), -100, strings.Repeat("x", MaxWordLength))
	require.NoError(t, err)
	assert.True(t, added)
}
