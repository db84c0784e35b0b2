// Package spam detects the same sender repeating the same text in a chat
// within a sliding window.
package spam

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/core"
)

// DefaultShards is the number of independently locked partitions
const DefaultShards = 16

// Config holds the tracker parameters
type Config struct {
	// Window is the maximum gap between two observations of a key for
	// them to count as a repeat
	Window time.Duration
	// Threshold is the repeat count at which observations are flagged
	Threshold int
	// Shards partitions the table by chat to reduce lock contention
	Shards int
	// SweepInterval is how often the whole table is pruned in the
	// background; zero disables the sweeper
	SweepInterval time.Duration
}

type shard struct {
	mu      sync.Mutex
	entries map[core.SpamKey]*core.SpamEntry
}

// prune removes every entry whose last observation is older than window.
// The caller must hold s.mu.
func (s *shard) prune(now time.Time, window time.Duration) int {
	removed := 0
	for k, e := range s.entries {
		if now.Sub(e.LastSeenAt) > window {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Tracker counts repetitions per (chat, user, normalized text). It is
// safe for concurrent use; observations of one key are applied in the
// order Observe is called.
type Tracker struct {
	window    time.Duration
	threshold int
	shards    []*shard
	logger    *zap.Logger

	sweepInterval time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewTracker creates a tracker and starts the background sweeper when
// cfg.SweepInterval is positive
func NewTracker(cfg Config, logger *zap.Logger) *Tracker {
	n := cfg.Shards
	if n <= 0 {
		n = DefaultShards
	}
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{entries: make(map[core.SpamKey]*core.SpamEntry)}
	}

	t := &Tracker{
		window:        cfg.Window,
		threshold:     cfg.Threshold,
		shards:        shards,
		logger:        logger,
		sweepInterval: cfg.SweepInterval,
		stopCh:        make(chan struct{}),
	}

	if t.sweepInterval > 0 {
		go t.startSweepTask()
	}

	return t
}

func (t *Tracker) shardFor(chatID int64) *shard {
	return t.shards[uint64(chatID)%uint64(len(t.shards))]
}

// Observe records one message for key at time now and reports whether
// the key has now been seen Threshold or more times with every gap
// within Window. Each observation moves the deadline forward; a gap
// longer than Window starts the count over.
func (t *Tracker) Observe(key core.SpamKey, now time.Time) core.Verdict {
	if key.Text == "" {
		return core.VerdictAllow
	}

	s := t.shardFor(key.ChatID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(now, t.window)

	e, ok := s.entries[key]
	if !ok {
		s.entries[key] = &core.SpamEntry{LastSeenAt: now, RepeatCount: 1}
		return core.VerdictAllow
	}

	if now.Sub(e.LastSeenAt) > t.window {
		// Expired; prune normally removes these first
		e.LastSeenAt = now
		e.RepeatCount = 1
		return core.VerdictAllow
	}

	e.RepeatCount++
	e.LastSeenAt = now
	if e.RepeatCount >= t.threshold {
		return core.VerdictFlag
	}
	return core.VerdictAllow
}

// Sweep prunes stale entries from every shard and returns how many were
// removed
func (t *Tracker) Sweep(now time.Time) int {
	removed := 0
	for _, s := range t.shards {
		s.mu.Lock()
		removed += s.prune(now, t.window)
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked keys
func (t *Tracker) Len() int {
	n := 0
	for _, s := range t.shards {
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Window returns the configured window
func (t *Tracker) Window() time.Duration {
	return t.window
}

// Threshold returns the configured repeat threshold
func (t *Tracker) Threshold() int {
	return t.threshold
}

// startSweepTask periodically prunes the whole table
func (t *Tracker) startSweepTask() {
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := t.Sweep(time.Now())
			t.logger.Debug("Swept spam tracker", zap.Int("expired_count", removed))
		case <-t.stopCh:
			return
		}
	}
}

// Stop stops the background sweeper
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
}
