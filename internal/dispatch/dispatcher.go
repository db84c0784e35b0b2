// Package dispatch routes inbound chat messages to the command handler or
// the moderation engine, and fans them out to per-chat workers.
package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/commands"
	"github.com/mikey/group-guard/internal/core"
)

// Evaluator is the moderation engine
type Evaluator interface {
	Evaluate(ctx context.Context, msg *core.Message) core.Decision
}

// CommandRunner recognizes and executes bot commands
type CommandRunner interface {
	Parse(text string) (commands.Command, bool)
	Handle(ctx context.Context, msg *core.Message, cmd commands.Command) error
}

// Result describes what happened to a dispatched message
type Result struct {
	// Command is set when the message was a recognized command
	Command  *commands.Command
	Decision core.Decision
	Err      error
}

// Dispatcher sends commands to the command handler and everything else
// through moderation
type Dispatcher struct {
	evaluator Evaluator
	commands  CommandRunner
	logger    *zap.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(evaluator Evaluator, commands CommandRunner, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		evaluator: evaluator,
		commands:  commands,
		logger:    logger,
	}
}

// Dispatch handles one message. A panic while handling it is recovered and
// returned as Result.Err so a single bad message cannot stop a worker.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *core.Message) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Recovered from panic while handling message",
				zap.Int64("chat_id", msg.Chat.ID),
				zap.Int("message_id", msg.MessageID),
				zap.Any("panic", r))
			res.Err = fmt.Errorf("panic while handling message %d: %v", msg.MessageID, r)
		}
	}()

	if cmd, ok := d.commands.Parse(msg.Text); ok {
		res.Command = &cmd
		if err := d.commands.Handle(ctx, msg, cmd); err != nil {
			d.logger.Warn("Failed to handle command",
				zap.String("command", cmd.Name),
				zap.Int64("chat_id", msg.Chat.ID),
				zap.Int64("user_id", msg.UserID),
				zap.Error(err))
			res.Err = err
		}
		return res
	}

	res.Decision = d.evaluator.Evaluate(ctx, msg)
	return res
}
