package di

import (
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/adapters/console"
	"github.com/mikey/group-guard/internal/config"
	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/logging"
)

// CLIFlags contains the global flags of the admin CLI
type CLIFlags struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool

	// Store overrides store.type when set
	Store string
	// SQLitePath overrides store.sqlite_path when set
	SQLitePath string
	// Admins report the administrator status in the console chat
	Admins []int64
}

// BuildCLIContainer creates and configures a dependency injection container
// for the admin CLI. Chat platform calls are served by the console.
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration. The bot token is not needed offline.
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		applyCLIOverrides(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register console
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) *console.Console {
		return console.New(os.Stdout, flags.Admins, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *console.Console) core.MessageDeleter { return c }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *console.Console) core.Replier { return c }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *console.Console) core.MemberStatusProvider { return c }); err != nil {
		return nil, err
	}

	if err := provideModeration(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyCLIOverrides copies explicitly set flags over the configuration
func applyCLIOverrides(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()
	if flags.Store != "" {
		v.Set("store.type", flags.Store)
	}
	if flags.SQLitePath != "" {
		v.Set("store.sqlite_path", flags.SQLitePath)
	}
}
