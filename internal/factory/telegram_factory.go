package factory

import (
	"github.com/mymmrac/telego"
	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/adapters/telegram"
	"github.com/mikey/group-guard/internal/commands"
	"github.com/mikey/group-guard/internal/config"
	"github.com/mikey/group-guard/internal/dispatch"
)

// TelegramFactory creates the Bot API client and listener based on
// configuration
type TelegramFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTelegramFactory creates a new telegram factory
func NewTelegramFactory(cfg *config.Config, logger *zap.Logger) *TelegramFactory {
	return &TelegramFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateBot creates the Bot API handle
func (f *TelegramFactory) CreateBot() (*telego.Bot, error) {
	tgCfg, err := f.cfg.GetTelegram()
	if err != nil {
		return nil, err
	}
	return telegram.NewBot(tgCfg.BotToken, f.logger)
}

// CreateClient creates the rate limited Bot API client
func (f *TelegramFactory) CreateClient(bot *telego.Bot) (*telegram.Client, error) {
	tgCfg, err := f.cfg.GetTelegram()
	if err != nil {
		return nil, err
	}
	limiter := telegram.NewLimiter(tgCfg.APIRate, tgCfg.APIBurst)
	return telegram.NewClient(bot, limiter, tgCfg.RequestTimeout, f.logger), nil
}

// CreateListener creates the long polling listener
func (f *TelegramFactory) CreateListener(
	bot *telego.Bot,
	client *telegram.Client,
	dispatcher *dispatch.Dispatcher,
	handler *commands.Handler,
) (*telegram.Listener, error) {
	tgCfg, err := f.cfg.GetTelegram()
	if err != nil {
		return nil, err
	}
	return telegram.NewListener(bot, client, dispatcher, handler, f.logger, telegram.ListenerConfig{
		PollTimeout: tgCfg.PollTimeout,
		Workers:     tgCfg.Workers,
	}), nil
}
