// Package commands handles the bot commands: help and badword
// administration.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/badwords"
	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/metrics"
	"github.com/mikey/group-guard/internal/utils"
)

// Command names, without the leading slash
const (
	Start    = "start"
	Help     = "help"
	BadAdd   = "bad_add"
	BadDel   = "bad_del"
	BadList  = "bad_list"
	BadClear = "bad_clear"
)

// Command is a parsed bot command
type Command struct {
	Name string
	Arg  string
}

// BadwordEditor is the badword index as seen by the commands
type BadwordEditor interface {
	Add(ctx context.Context, chatID int64, word string) (bool, error)
	Remove(ctx context.Context, chatID int64, word string) (bool, error)
	List(ctx context.Context, chatID int64) ([]string, error)
	Clear(ctx context.Context, chatID int64) (int64, error)
}

// PrivilegeChecker decides whether a user may edit a chat's badwords
type PrivilegeChecker interface {
	IsPrivileged(ctx context.Context, chat core.Chat, userID int64) bool
}

// Config holds the settings shown in the help text
type Config struct {
	Window    time.Duration
	Threshold int
}

// Handler executes bot commands
type Handler struct {
	badwords    BadwordEditor
	privileges  PrivilegeChecker
	replier     core.Replier
	tp          *utils.TextProcessor
	logger      *zap.Logger
	cfg         Config
	botUsername string
}

// NewHandler creates a new command handler
func NewHandler(
	badwords BadwordEditor,
	privileges PrivilegeChecker,
	replier core.Replier,
	tp *utils.TextProcessor,
	logger *zap.Logger,
	cfg Config,
) *Handler {
	return &Handler{
		badwords:   badwords,
		privileges: privileges,
		replier:    replier,
		tp:         tp,
		logger:     logger,
		cfg:        cfg,
	}
}

// SetBotUsername makes Parse reject commands addressed to other bots
// (e.g. /bad_list@otherbot)
func (h *Handler) SetBotUsername(username string) {
	h.botUsername = strings.TrimPrefix(username, "@")
}

// Parse recognizes one of the bot's commands in text. Unknown commands and
// commands addressed to another bot are not recognized.
func (h *Handler) Parse(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	head, arg := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, arg = text[:i], strings.TrimSpace(text[i:])
	}

	name := strings.TrimPrefix(head, "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		target := name[at+1:]
		name = name[:at]
		if h.botUsername != "" && !strings.EqualFold(target, h.botUsername) {
			return Command{}, false
		}
	}
	name = strings.ToLower(name)

	switch name {
	case Start, Help, BadAdd, BadDel, BadList, BadClear:
		return Command{Name: name, Arg: arg}, true
	default:
		return Command{}, false
	}
}

// HelpText returns the help message
func (h *Handler) HelpText() string {
	return fmt.Sprintf("Group Guard is active.\n\n"+
		"Features:\n"+
		"- .start / /start: check the bot and show this help\n"+
		"- Auto delete messages containing @mentions\n"+
		"- Auto delete messages containing links\n"+
		"- Auto delete messages containing this chat's badwords\n"+
		"- Auto delete repeated identical text (>= %dx within %ds)\n\n"+
		"Admin commands:\n"+
		"/bad_add <word> - add a badword\n"+
		"/bad_del <word> - remove a badword\n"+
		"/bad_list - list badwords\n"+
		"/bad_clear - remove all badwords\n",
		h.cfg.Threshold, int(h.cfg.Window/time.Second))
}

// SendHelp posts the help message to a chat
func (h *Handler) SendHelp(ctx context.Context, chatID int64) error {
	return h.reply(ctx, chatID, h.HelpText())
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) error {
	if err := h.replier.Reply(ctx, chatID, h.tp.ProcessText(text)); err != nil {
		return fmt.Errorf("failed to reply: %w", err)
	}
	return nil
}

// Handle executes cmd for msg and replies in the chat. Only reply
// failures are returned.
func (h *Handler) Handle(ctx context.Context, msg *core.Message, cmd Command) error {
	result, text := h.execute(ctx, msg, cmd)
	metrics.CommandsTotal.WithLabelValues(cmd.Name, result).Inc()

	h.logger.Debug("Handled command",
		zap.String("command", cmd.Name),
		zap.String("result", result),
		zap.Int64("chat_id", msg.Chat.ID),
		zap.Int64("user_id", msg.UserID))

	return h.reply(ctx, msg.Chat.ID, text)
}

// execute runs the command and returns the result label and reply text
func (h *Handler) execute(ctx context.Context, msg *core.Message, cmd Command) (string, string) {
	switch cmd.Name {
	case Start, Help:
		return "ok", h.HelpText()
	}

	if !msg.Chat.Type.IsGroup() {
		return "invalid", "Badword commands only work in groups."
	}

	chatID := msg.Chat.ID
	switch cmd.Name {
	case BadList:
		words, err := h.badwords.List(ctx, chatID)
		if err != nil {
			return h.storeFailure(chatID, cmd, err)
		}
		if len(words) == 0 {
			return "ok", "The badword list is empty."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Badwords (%d):\n", len(words))
		for i, w := range words {
			fmt.Fprintf(&b, "%d. %s\n", i+1, w)
		}
		return "ok", b.String()
	}

	if !h.privileges.IsPrivileged(ctx, msg.Chat, msg.UserID) {
		h.logger.Info("Rejected command from unprivileged user",
			zap.String("command", cmd.Name),
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", msg.UserID))
		return "denied", "Only group admins can use this command."
	}

	switch cmd.Name {
	case BadAdd:
		if cmd.Arg == "" {
			return "invalid", "Usage: /bad_add <word>"
		}
		added, err := h.badwords.Add(ctx, chatID, cmd.Arg)
		if errors.Is(err, badwords.ErrEmptyWord) {
			return "invalid", "Usage: /bad_add <word>"
		}
		if errors.Is(err, badwords.ErrWordTooLong) {
			return "invalid", fmt.Sprintf("A badword can be at most %d characters long.", badwords.MaxWordLength)
		}
		if err != nil {
			return h.storeFailure(chatID, cmd, err)
		}
		word := utils.NormalizeText(cmd.Arg)
		if !added {
			return "ok", fmt.Sprintf("%q is already a badword.", word)
		}
		return "ok", fmt.Sprintf("Added badword %q.", word)

	case BadDel:
		if cmd.Arg == "" {
			return "invalid", "Usage: /bad_del <word>"
		}
		removed, err := h.badwords.Remove(ctx, chatID, cmd.Arg)
		if errors.Is(err, badwords.ErrEmptyWord) {
			return "invalid", "Usage: /bad_del <word>"
		}
		if err != nil {
			return h.storeFailure(chatID, cmd, err)
		}
		word := utils.NormalizeText(cmd.Arg)
		if !removed {
			return "ok", fmt.Sprintf("%q is not a badword.", word)
		}
		return "ok", fmt.Sprintf("Removed badword %q.", word)

	case BadClear:
		n, err := h.badwords.Clear(ctx, chatID)
		if err != nil {
			return h.storeFailure(chatID, cmd, err)
		}
		return "ok", fmt.Sprintf("Removed %d badwords.", n)
	}

	return "invalid", "Unknown command."
}

func (h *Handler) storeFailure(chatID int64, cmd Command, err error) (string, string) {
	h.logger.Error("Badword command failed",
		zap.String("command", cmd.Name),
		zap.Int64("chat_id", chatID),
		zap.Error(err))
	return "error", "Badword storage is unavailable, please try again later."
}
