package app

import (
	"context"
	"fmt"

	"github.com/kapu/mana-chat-bot-go/internal/adapter"
	"github.com/kapu/mana-chat-bot-go/internal/bot"
	"github.com/kapu/mana-chat-bot-go/internal/command"
	"github.com/kapu/mana-chat-bot-go/internal/config"
	"github.com/kapu/mana-chat-bot-go/internal/constants"
	"github.com/kapu/mana-chat-bot-go/internal/gateway"
	"github.com/kapu/mana-chat-bot-go/internal/service/cache"
	"github.com/kapu/mana-chat-bot-go/internal/service/points"
	"github.com/kapu/mana-chat-bot-go/internal/twitch"
	"github.com/kapu/mana-chat-bot-go/internal/util"
	"go.uber.org/zap"
)

// PointsBackend is the storage contract behind message resolution and point
// deduction.
type PointsBackend interface {
	adapter.UserSource
	command.Ledger
}

// Container bundles assembled services for constructing the Bot.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Dispatcher *command.Dispatcher

	botDeps *bot.Dependencies
	closers []func()
}

// NewBot instantiates a bot using the pre-built dependency graph.
func (c *Container) NewBot() (*bot.Bot, error) {
	if c == nil || c.botDeps == nil {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	return bot.NewBot(c.botDeps)
}

// Close releases storage connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles storage, the command dispatcher and the chat transport.
// Commands defined on the returned Dispatcher before the bot starts are
// picked up by it.
func Build(ctx context.Context, cfg *config.Config, logging *util.Logging) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logging == nil || logging.Logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Logger

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Module persistence
	var moduleStore command.ModuleStore
	if cfg.Modules.Persist {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
		moduleStore = cache.NewModuleStateStore(cacheSvc, constants.RedisConfig.ModulesKey)
	}

	// Points storage
	var backend PointsBackend
	switch cfg.Points.Backend {
	case config.PointsMemory:
		backend = points.NewMemoryStore(logger)
		logger.Warn("Using in-memory points storage, balances are lost on restart")
	default:
		postgresSvc, pgErr := points.NewPostgresService(points.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", pgErr)
		}
		closers = append(closers, func() {
			_ = postgresSvc.Close()
		})
		backend = points.NewRepository(postgresSvc, logger)
	}

	// Command dispatch
	commandLogger := logger.Named("commands")
	if cfg.Logging.CommandsDebug {
		commandLogger = logging.Verbose.Named("commands")
	}

	modules := command.NewModuleRegistry(moduleStore, logger)
	restored, restoreErr := modules.Restore(ctx)
	if restoreErr != nil {
		logger.Warn("Failed to restore active modules, using defaults", zap.Error(restoreErr))
	}
	if !restored {
		for _, name := range cfg.Modules.Default {
			modules.Enable(ctx, name)
		}
	}

	formatter := adapter.NewResponseFormatter(constants.CommandPrefix)
	dispatcher := command.NewDispatcher(&command.Dependencies{
		Ledger:    backend,
		Modules:   modules,
		Formatter: formatter,
		Logger:    commandLogger,
	})
	command.RegisterBuiltins(dispatcher)

	transport, err := newTransport(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Services assembled",
		zap.String("transport", cfg.Transport),
		zap.String("points_backend", cfg.Points.Backend),
		zap.Bool("module_persistence", cfg.Modules.Persist),
		zap.Strings("active_modules", modules.Active()),
	)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Dispatcher: dispatcher,
		botDeps: &bot.Dependencies{
			Logger:         logger,
			Transport:      transport,
			MessageAdapter: adapter.NewMessageAdapter(backend),
			Dispatcher:     dispatcher,
			QueueSize:      constants.DispatchConfig.QueueSize,
		},
		closers: closers,
	}, nil
}

func newTransport(cfg *config.Config, logger *zap.Logger) (bot.Transport, error) {
	switch cfg.Transport {
	case config.TransportTwitch:
		return twitch.NewTransport(twitch.Config{
			Username:   cfg.Twitch.Username,
			OAuthToken: cfg.Twitch.OAuthToken,
			Channels:   twitch.NormalizeChannels(cfg.Twitch.Channels),
		}, logger), nil
	case config.TransportGateway:
		return gateway.NewTransport(cfg.Gateway.BaseURL, cfg.Gateway.WSURL, logger), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
