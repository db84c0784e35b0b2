// Package console runs the moderation pipeline over text lines instead of a
// live chat, printing deletions and replies.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/dispatch"
)

// Console stands in for the chat platform. Deletes and replies are
// written to out.
type Console struct {
	out    io.Writer
	logger *zap.Logger
	admins map[int64]bool

	mu sync.Mutex
}

// New creates a new console. Users in admins report the administrator
// member status.
func New(out io.Writer, admins []int64, logger *zap.Logger) *Console {
	set := make(map[int64]bool, len(admins))
	for _, id := range admins {
		set[id] = true
	}
	return &Console{
		out:    out,
		logger: logger,
		admins: set,
	}
}

func (c *Console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// DeleteMessage prints the deletion
func (c *Console) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	c.printf("[delete] chat=%d message=%d\n", chatID, messageID)
	return nil
}

// Reply prints the bot's reply
func (c *Console) Reply(_ context.Context, chatID int64, text string) error {
	c.printf("[reply] chat=%d\n%s\n", chatID, text)
	return nil
}

// MemberStatus reports administrator for configured admins and member
// for everyone else
func (c *Console) MemberStatus(_ context.Context, _ int64, userID int64) (string, error) {
	if c.admins[userID] {
		return core.MemberStatusAdministrator, nil
	}
	return "member", nil
}

// RunOptions describes the simulated chat
type RunOptions struct {
	Chat core.Chat
	// UserID is the sender of lines without a "<user id>:" prefix
	UserID int64
}

// Run dispatches every non-empty line of in as a message. A line of the
// form "<user id>: <text>" is sent by that user.
func (c *Console) Run(ctx context.Context, in io.Reader, d *dispatch.Dispatcher, opts RunOptions) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	messageID := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		messageID++
		userID, text := splitSender(line, opts.UserID)
		msg := &core.Message{
			Chat:       opts.Chat,
			UserID:     userID,
			MessageID:  messageID,
			Text:       text,
			ReceivedAt: time.Now(),
		}

		res := d.Dispatch(ctx, msg)
		c.printResult(msg, res)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func (c *Console) printResult(msg *core.Message, res dispatch.Result) {
	switch {
	case res.Command != nil:
		c.printf("#%d user=%d command=/%s\n", msg.MessageID, msg.UserID, res.Command.Name)
	case res.Decision.Action == core.ActionDelete:
		detail := string(res.Decision.Reason)
		if res.Decision.Term != "" {
			detail += " " + strconv.Quote(res.Decision.Term)
		}
		c.printf("#%d user=%d delete (%s)\n", msg.MessageID, msg.UserID, detail)
	default:
		c.printf("#%d user=%d %s\n", msg.MessageID, msg.UserID, res.Decision.Action)
	}
	if res.Err != nil {
		c.logger.Warn("Failed to handle message", zap.Int("message_id", msg.MessageID), zap.Error(res.Err))
	}
}

// splitSender separates an optional "<user id>:" prefix from the text
func splitSender(line string, fallback int64) (int64, string) {
	prefix, rest, ok := strings.Cut(line, ":")
	if !ok {
		return fallback, line
	}
	id, err := strconv.ParseInt(strings.TrimSpace(prefix), 10, 64)
	if err != nil {
		return fallback, line
	}
	return id, strings.TrimPrefix(rest, " ")
}
