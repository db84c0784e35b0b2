package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/dispatch"
)

// UsernameReceiver is told the bot's username once it is known
type UsernameReceiver interface {
	SetBotUsername(username string)
}

// ListenerConfig holds the long polling settings
type ListenerConfig struct {
	// PollTimeout is the getUpdates long polling timeout in seconds
	PollTimeout int
	Workers     int
}

// Listener receives updates via long polling and hands every text message
// to the dispatcher
type Listener struct {
	bot        *telego.Bot
	client     *Client
	dispatcher *dispatch.Dispatcher
	identity   UsernameReceiver
	logger     *zap.Logger
	cfg        ListenerConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	pool   *dispatch.Pool
}

// NewListener creates a new long polling listener
func NewListener(
	bot *telego.Bot,
	client *Client,
	dispatcher *dispatch.Dispatcher,
	identity UsernameReceiver,
	logger *zap.Logger,
	cfg ListenerConfig,
) *Listener {
	return &Listener{
		bot:        bot,
		client:     client,
		dispatcher: dispatcher,
		identity:   identity,
		logger:     logger,
		cfg:        cfg,
	}
}

// Start begins polling for updates
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return errors.New("telegram listener already started")
	}

	ctx, cancel := context.WithCancel(context.Background())

	username, err := l.client.Username(ctx)
	if err != nil {
		cancel()
		return err
	}
	if l.identity != nil {
		l.identity.SetBotUsername(username)
	}

	updates, err := l.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        l.cfg.PollTimeout,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	l.pool = dispatch.NewPool(context.Background(), l.cfg.Workers, dispatch.DefaultQueueSize, l.handle, l.logger)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.receive(ctx, updates)

	l.logger.Info("Telegram listener started",
		zap.String("bot", "@"+username),
		zap.Int("workers", l.cfg.Workers))
	l.logger.Info("The bot must be an administrator with the delete messages right in every group it moderates")
	return nil
}

func (l *Listener) receive(ctx context.Context, updates <-chan telego.Update) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg, ok := toMessage(update, time.Now())
			if !ok {
				continue
			}
			if err := l.pool.Submit(ctx, msg); err != nil {
				l.logger.Debug("Dropped message during shutdown",
					zap.Int64("chat_id", msg.Chat.ID),
					zap.Int("message_id", msg.MessageID),
					zap.Error(err))
			}
		}
	}
}

func (l *Listener) handle(ctx context.Context, msg *core.Message) {
	l.dispatcher.Dispatch(ctx, msg)
}

// Stop stops polling and waits until queued messages are handled
func (l *Listener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel == nil {
		return nil
	}

	l.cancel()
	<-l.done
	l.pool.Stop()
	l.cancel = nil

	l.logger.Info("Telegram listener stopped")
	return nil
}
