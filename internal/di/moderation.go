package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/badwords"
	"github.com/mikey/group-guard/internal/commands"
	"github.com/mikey/group-guard/internal/config"
	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/dispatch"
	"github.com/mikey/group-guard/internal/factory"
	"github.com/mikey/group-guard/internal/spam"
	"github.com/mikey/group-guard/internal/utils"
	"github.com/mikey/group-guard/internal/whitelist"
)

// provideModeration registers the transport independent part of the
// graph. The container must already provide *config.Config, *zap.Logger,
// core.MessageDeleter, core.Replier and core.MemberStatusProvider.
func provideModeration(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return err
	}

	// Register badword store
	if err := container.Provide(func(f *factory.StoreFactory) (core.BadwordStore, error) {
		return f.CreateBadwordStore()
	}); err != nil {
		return err
	}

	// Register badword index
	if err := container.Provide(func(f *factory.StoreFactory, store core.BadwordStore, logger *zap.Logger) (*badwords.Index, error) {
		timeout, err := f.GetStoreTimeout()
		if err != nil {
			return nil, err
		}
		return badwords.NewIndex(store, logger, timeout), nil
	}); err != nil {
		return err
	}

	// Register repeat tracker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*spam.Tracker, error) {
		spamCfg, err := cfg.GetSpam()
		if err != nil {
			return nil, err
		}
		logger.Info("Repeat spam detection",
			zap.Duration("window", spamCfg.Window),
			zap.Int("threshold", spamCfg.Threshold))
		return spam.NewTracker(spam.Config{
			Window:        spamCfg.Window,
			Threshold:     spamCfg.Threshold,
			Shards:        spamCfg.Shards,
			SweepInterval: spamCfg.Window,
		}, logger), nil
	}); err != nil {
		return err
	}

	// Register privilege checker
	if err := container.Provide(func(cfg *config.Config, members core.MemberStatusProvider, logger *zap.Logger) (*whitelist.Checker, error) {
		ids, err := cfg.GetPrivilegedUserIDs()
		if err != nil {
			return nil, err
		}
		tgCfg, err := cfg.GetTelegram()
		if err != nil {
			return nil, err
		}
		return whitelist.NewChecker(ids, members, tgCfg.RequestTimeout, logger), nil
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register command handler
	if err := container.Provide(func(
		idx *badwords.Index,
		checker *whitelist.Checker,
		replier core.Replier,
		tp *utils.TextProcessor,
		tracker *spam.Tracker,
		logger *zap.Logger,
	) *commands.Handler {
		return commands.NewHandler(idx, checker, replier, tp, logger, commands.Config{
			Window:    tracker.Window(),
			Threshold: tracker.Threshold(),
		})
	}); err != nil {
		return err
	}

	// Register moderation service
	if err := container.Provide(func(
		cfg *config.Config,
		idx *badwords.Index,
		tracker *spam.Tracker,
		deleter core.MessageDeleter,
		handler *commands.Handler,
		logger *zap.Logger,
	) (*core.ModerationService, error) {
		tgCfg, err := cfg.GetTelegram()
		if err != nil {
			return nil, err
		}
		return core.NewModerationService(idx, tracker, deleter, handler, logger, core.ServiceConfig{
			DeleteTimeout: tgCfg.RequestTimeout,
		}), nil
	}); err != nil {
		return err
	}

	// Register dispatcher
	if err := container.Provide(func(service *core.ModerationService, handler *commands.Handler, logger *zap.Logger) *dispatch.Dispatcher {
		return dispatch.NewDispatcher(service, handler, logger)
	}); err != nil {
		return err
	}

	return nil
}
