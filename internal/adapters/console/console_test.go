package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/adapters/store"
	"github.com/mikey/group-guard/internal/badwords"
	"github.com/mikey/group-guard/internal/commands"
	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/dispatch"
	"github.com/mikey/group-guard/internal/spam"
	"github.com/mikey/group-guard/internal/utils"
	"github.com/mikey/group-guard/internal/whitelist"
)

func newPipeline(t *testing.T, out *bytes.Buffer, admins []int64) (*Console, *dispatch.Dispatcher) {
	t.Helper()
	logger := zap.NewNop()

	c := New(out, admins, logger)
	idx := badwords.NewIndex(store.NewMemoryStore(logger), logger, time.Second)
	tracker := spam.NewTracker(spam.Config{Window: 30 * time.Second, Threshold: 2}, logger)
	t.Cleanup(tracker.Stop)

	checker := whitelist.NewChecker(nil, c, time.Second, logger)
	handler := commands.NewHandler(idx, checker, c, utils.NewTextProcessor(logger), logger,
		commands.Config{Window: tracker.Window(), Threshold: tracker.Threshold()})
	service := core.NewModerationService(idx, tracker, c, handler, logger, core.ServiceConfig{DeleteTimeout: time.Second})

	return c, dispatch.NewDispatcher(service, handler, logger)
}

func TestRunModeratesLines(t *testing.T) {
	var out bytes.Buffer
	c, d := newPipeline(t, &out, []int64{7})

	input := strings.Join([]string{
		"7: /bad_add scam",
		"8: hello world",
		"8: this is a SCAM offer",
		"8: visit example.com today",
		"8: ping @someone please",
		"",
		"8: same text",
		"8: same text",
		"9: /bad_add other",
	}, "\n")

	opts := RunOptions{Chat: core.Chat{ID: -100, Type: core.ChatTypeGroup}, UserID: 1}
	require.NoError(t, c.Run(context.Background(), strings.NewReader(input), d, opts))

	got := out.String()
	assert.Contains(t, got, "#1 user=7 command=/bad_add")
	assert.Contains(t, got, `Added badword "scam".`)
	assert.Contains(t, got, "#2 user=8 allow")
	assert.Contains(t, got, `#3 user=8 delete (badword "scam")`)
	assert.Contains(t, got, "#4 user=8 delete (link)")
	assert.Contains(t, got, "#5 user=8 delete (mention)")
	assert.Contains(t, got, "#6 user=8 allow")
	assert.Contains(t, got, "#7 user=8 delete (repeat)")
	assert.Contains(t, got, "[delete] chat=-100 message=7")
	assert.Contains(t, got, "#8 user=9 command=/bad_add")
	assert.Contains(t, got, "Only group admins can use this command.")
}

func TestRunPrivateChatIsIgnored(t *testing.T) {
	var out bytes.Buffer
	c, d := newPipeline(t, &out, nil)

	opts := RunOptions{Chat: core.Chat{ID: 5, Type: core.ChatTypePrivate}, UserID: 5}
	require.NoError(t, c.Run(context.Background(), strings.NewReader("see https://spam.example\n"), d, opts))

	assert.Contains(t, out.String(), "#1 user=5 ignore")
	assert.NotContains(t, out.String(), "[delete]")
}

func TestSplitSender(t *testing.T) {
	tests := []struct {
		line     string
		wantID   int64
		wantText string
	}{
		{"42: hi", 42, "hi"},
		{"-5:hi", -5, "hi"},
		{"hi there", 1, "hi there"},
		{"note: not an id", 1, "note: not an id"},
	}

	for _, tt := range tests {
		id, text := splitSender(tt.line, 1)
		assert.Equal(t, tt.wantID, id, tt.line)
		assert.Equal(t, tt.wantText, text, tt.line)
	}
}
