package spam

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/core"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return epoch.Add(time.Duration(sec) * time.Second)
}

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr := NewTracker(Config{Window: 30 * time.Second, Threshold: 2}, zap.NewNop())
	t.Cleanup(tr.Stop)
	return tr
}

func TestObserveSlidingWindow(t *testing.T) {
	tr := newTestTracker(t)
	key := core.SpamKey{ChatID: -1, UserID: 42, Text: "buy now"}

	steps := []struct {
		sec  int
		want core.Verdict
	}{
		{0, core.VerdictAllow},
		{10, core.VerdictFlag},
		{25, core.VerdictFlag},
		{61, core.VerdictAllow}, // gap of 36s resets
		{70, core.VerdictFlag},
	}

	for _, s := range steps {
		assert.Equal(t, s.want, tr.Observe(key, at(s.sec)), "t=%d", s.sec)
	}
}

func TestObserveRollingDeadline(t *testing.T) {
	tr := newTestTracker(t)
	key := core.SpamKey{ChatID: 1, UserID: 1, Text: "x"}

	// Each gap is within the window even though the total span is not
	assert.Equal(t, core.VerdictAllow, tr.Observe(key, at(0)))
	assert.Equal(t, core.VerdictFlag, tr.Observe(key, at(30)))
	assert.Equal(t, core.VerdictFlag, tr.Observe(key, at(60)))
	assert.Equal(t, core.VerdictFlag, tr.Observe(key, at(90)))
}

func TestObserveEvictsStaleKey(t *testing.T) {
	tr := newTestTracker(t)
	key := core.SpamKey{ChatID: 1, UserID: 1, Text: "hello"}

	assert.Equal(t, core.VerdictAllow, tr.Observe(key, at(0)))
	assert.Equal(t, core.VerdictAllow, tr.Observe(key, at(100)), "stale entry must not keep its count")
	assert.Equal(t, core.VerdictFlag, tr.Observe(key, at(101)))
}

func TestObservePrunesOtherKeys(t *testing.T) {
	tr := NewTracker(Config{Window: 30 * time.Second, Threshold: 2, Shards: 1}, zap.NewNop())
	defer tr.Stop()

	tr.Observe(core.SpamKey{ChatID: 1, UserID: 1, Text: "a"}, at(0))
	tr.Observe(core.SpamKey{ChatID: 2, UserID: 1, Text: "b"}, at(0))
	require.Equal(t, 2, tr.Len())

	tr.Observe(core.SpamKey{ChatID: 3, UserID: 1, Text: "c"}, at(45))
	assert.Equal(t, 1, tr.Len())
}

func TestObserveDistinctKeys(t *testing.T) {
	tr := newTestTracker(t)
	base := core.SpamKey{ChatID: 1, UserID: 1, Text: "same"}

	assert.Equal(t, core.VerdictAllow, tr.Observe(base, at(0)))
	assert.Equal(t, core.VerdictFlag, tr.Observe(base, at(1)))

	others := []core.SpamKey{
		{ChatID: 2, UserID: 1, Text: "same"},
		{ChatID: 1, UserID: 2, Text: "same"},
		{ChatID: 1, UserID: 1, Text: "different"},
	}
	for _, k := range others {
		assert.Equal(t, core.VerdictAllow, tr.Observe(k, at(2)), "key %+v", k)
	}
}

func TestObserveAnonymousSender(t *testing.T) {
	tr := newTestTracker(t)
	key := core.SpamKey{ChatID: 1, UserID: core.AnonymousUserID, Text: "anon"}

	assert.Equal(t, core.VerdictAllow, tr.Observe(key, at(0)))
	assert.Equal(t, core.VerdictFlag, tr.Observe(key, at(5)))
}

func TestObserveIgnoresEmptyText(t *testing.T) {
	tr := newTestTracker(t)
	key := core.SpamKey{ChatID: 1, UserID: 1}

	assert.Equal(t, core.VerdictAllow, tr.Observe(key, at(0)))
	assert.Equal(t, core.VerdictAllow, tr.Observe(key, at(1)))
	assert.Equal(t, 0, tr.Len())
}

func TestObserveThreshold(t *testing.T) {
	tr := NewTracker(Config{Window: time.Minute, Threshold: 3}, zap.NewNop())
	defer tr.Stop()
	key := core.SpamKey{ChatID: 1, UserID: 1, Text: "x"}

	assert.Equal(t, core.VerdictAllow, tr.Observe(key, at(0)))
	assert.Equal(t, core.VerdictAllow, tr.Observe(key, at(1)))
	assert.Equal(t, core.VerdictFlag, tr.Observe(key, at(2)))
}

func TestSweep(t *testing.T) {
	tr := newTestTracker(t)
	for i := int64(0); i < 10; i++ {
		tr.Observe(core.SpamKey{ChatID: i, UserID: 1, Text: "x"}, at(0))
	}
	tr.Observe(core.SpamKey{ChatID: 99, UserID: 1, Text: "x"}, at(20))

	assert.Equal(t, 10, tr.Sweep(at(40)))
	assert.Equal(t, 1, tr.Len())
}

func TestBackgroundSweeper(t *testing.T) {
	tr := NewTracker(Config{
		Window:        10 * time.Millisecond,
		Threshold:     2,
		SweepInterval: 5 * time.Millisecond,
	}, zap.NewNop())
	defer tr.Stop()

	tr.Observe(core.SpamKey{ChatID: 1, UserID: 1, Text: "x"}, time.Now())
	assert.Eventually(t, func() bool { return tr.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestObserveConcurrentSameKey(t *testing.T) {
	tr := newTestTracker(t)
	key := core.SpamKey{ChatID: 1, UserID: 1, Text: "race"}
	now := at(0)

	const n = 50
	var wg sync.WaitGroup
	verdicts := make(chan core.Verdict, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			verdicts <- tr.Observe(key, now)
		}()
	}
	wg.Wait()
	close(verdicts)

	allowed := 0
	for v := range verdicts {
		if v == core.VerdictAllow {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed, "exactly one observation creates the entry")
}

func TestStopIsIdempotent(t *testing.T) {
	tr := NewTracker(Config{Window: time.Second, Threshold: 2, SweepInterval: time.Millisecond}, zap.NewNop())
	tr.Stop()
	tr.Stop()
}
