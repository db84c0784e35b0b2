package di

import (
	"github.com/mymmrac/telego"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/adapters/telegram"
	"github.com/mikey/group-guard/internal/commands"
	"github.com/mikey/group-guard/internal/config"
	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/dispatch"
	"github.com/mikey/group-guard/internal/factory"
	"github.com/mikey/group-guard/internal/logging"
	"github.com/mikey/group-guard/internal/metrics"
	"github.com/mikey/group-guard/internal/ports"
)

// BuildContainer creates and configures a dependency injection container
// for the bot daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		cfg, err := config.New()
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTelegramFactory); err != nil {
		return nil, err
	}

	// Register Bot API handle and client
	if err := container.Provide(func(f *factory.TelegramFactory) (*telego.Bot, error) {
		return f.CreateBot()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.TelegramFactory, bot *telego.Bot) (*telegram.Client, error) {
		return f.CreateClient(bot)
	}); err != nil {
		return nil, err
	}

	// The client is the deleter, replier and member lookup
	if err := container.Provide(func(c *telegram.Client) core.MessageDeleter { return c }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *telegram.Client) core.Replier { return c }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *telegram.Client) core.MemberStatusProvider { return c }); err != nil {
		return nil, err
	}

	if err := provideModeration(container); err != nil {
		return nil, err
	}

	// Register chat listener
	if err := container.Provide(func(
		f *factory.TelegramFactory,
		bot *telego.Bot,
		client *telegram.Client,
		dispatcher *dispatch.Dispatcher,
		handler *commands.Handler,
	) (ports.ChatListener, error) {
		return f.CreateListener(bot, client, dispatcher, handler)
	}); err != nil {
		return nil, err
	}

	// Register metrics server, nil when disabled
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *metrics.Server {
		m := cfg.GetMetrics()
		if !m.Enabled {
			return nil
		}
		return metrics.NewServer(m.ListenAddress, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
