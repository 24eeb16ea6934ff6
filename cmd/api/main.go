package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	cacheport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/cache"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/chat"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/clock"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/eventbus"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/notification"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/outcome"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/override"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/scheduler"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/settlement"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/trading"
	userUseCase "github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wager"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wallet"

	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/validation"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/auth"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/memory"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/messaging"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/pricefeed"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/random"
	timeProvider "github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const lockCleanupInterval = time.Minute

// store is what the use cases need from either the postgres or the memory backend
type store interface {
	persistence.UnitOfWork
	Outcomes() persistence.OutcomeRepository
	Chat() persistence.ChatRepository
	Settings() persistence.SettingRepository
}

// backend bundles the chosen store with its optional lifecycle hooks
type backend struct {
	store   store
	locks   persistence.UserLockRepository
	cleanup func(ctx context.Context) (int64, error)
	probe   handler.DatabaseProbe
	close   func() error
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logger.Options{
		Production: cfg.Environment == config.Production,
		Level:      cfg.Logger.Level,
		Caller:     cfg.Logger.CallerInfo,
		Component:  "wingo-api",
	})
	defer appLogger.Flush()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Server stopped with error", map[string]any{"error": err.Error()})
		appLogger.Flush()
		os.Exit(1)
	}
	appLogger.Info("Server exited gracefully", nil)
}

func run(cfg *config.Config, appLogger coreport.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := timeProvider.NewRealTimeProvider()
	rng := random.NewMathRandom()

	db, err := openBackend(ctx, cfg, appLogger, tp)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.close(); err != nil {
			appLogger.Error("Failed to close store", map[string]any{"error": err.Error()})
		}
	}()

	ledgerCfg, err := cfg.LedgerSettings()
	if err != nil {
		return err
	}
	payouts, err := cfg.PayoutTable()
	if err != nil {
		return err
	}
	schedCfg, err := cfg.SchedulerSettings()
	if err != nil {
		return err
	}
	wagerCfg, err := cfg.WagerSettings()
	if err != nil {
		return err
	}
	marketCfg, err := cfg.MarketSettings()
	if err != nil {
		return err
	}
	tradingCfg, err := cfg.TradingSettings()
	if err != nil {
		return err
	}
	walletCfg, err := cfg.WalletSettings()
	if err != nil {
		return err
	}
	userCfg, err := cfg.UserSettings()
	if err != nil {
		return err
	}

	if err := validation.RegisterWithGin(); err != nil {
		return err
	}

	bus := eventbus.NewBus(appLogger)
	hub := notification.NewHub(cfg.Notification.DisplayDuration, tp, appLogger)
	overrides := override.NewChannel(appLogger)
	clk := clock.New(cfg.Game.LockWindow)
	book := wager.NewBook()
	modeLocks := wager.NewModeLocks()

	ledgerSvc := ledger.NewService(db.store, db.locks, tp, appLogger, ledgerCfg)
	defer ledgerSvc.Shutdown()

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, tp)
	userRepo := db.store.GetUserRepository(ctx)
	users := userUseCase.NewUserUseCase(userRepo, hasher, tokens, ledgerSvc, hub, rng, tp, appLogger, userCfg)

	var bots *wager.BotGenerator
	if cfg.Bots.Enabled {
		bots = wager.NewBotGenerator(rng, tp)
	}
	wagers := wager.NewService(db.store, ledgerSvc, clk, book, modeLocks, hub, bots, tp, appLogger, wagerCfg)
	settler := settlement.NewSettler(db.store, ledgerSvc, hub, bus, payouts, tp, appLogger)
	sched := scheduler.New(clk, outcome.NewGenerator(rng, tp), overrides, db.store.Outcomes(), settler, book, modeLocks, bus, tp, appLogger, schedCfg)

	priceCache, closeCache, err := openPriceCache(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeCache()

	markets := trading.NewMarkets(priceCache, overrides, tp, appLogger, marketCfg)
	if err := markets.Restore(ctx); err != nil {
		appLogger.Warn("Failed to restore market prices", map[string]any{"error": err.Error()})
	}
	bus.Subscribe(event.TypeOutcomeDrawn, markets.HandleOutcome)

	tradingSvc := trading.NewService(db.store, ledgerSvc, markets, bus, tp, appLogger, tradingCfg)
	walletSvc := wallet.NewService(db.store, db.store.Settings(), ledgerSvc, hub, bus, tp, appLogger, walletCfg)
	chatSvc := chat.NewService(db.store.Chat(), userRepo, tp, appLogger, cfg.ChatSettings())

	if cfg.NATS.Enabled {
		nc, err := messaging.Connect(cfg.NATS.URL, appLogger)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		publisher := messaging.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix, tp, appLogger)
		defer publisher.Close()
		bus.SubscribeAll(publisher.Handle)
	}

	if cfg.Database.SeedFile != "" {
		if err := migration.CreateDefaultUsers(ctx, users, cfg.Database.SeedFile); err != nil {
			appLogger.Error("Failed to create default users", map[string]any{"error": err.Error()})
		}
	}

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp)
	routes.SetupRoutes(router, routes.Handlers{
		Auth:        handler.NewAuthHandler(users, appLogger),
		User:        handler.NewUserHandler(users, ledgerSvc, hub, appLogger),
		Round:       handler.NewRoundHandler(clk, sched, wagers, book, overrides, payouts, tp, appLogger),
		Trading:     handler.NewTradingHandler(tradingSvc, overrides, appLogger),
		Transaction: handler.NewTransactionHandler(walletSvc, appLogger),
		Chat:        handler.NewChatHandler(chatSvc, appLogger),
		Health:      handler.NewHealthHandler(db.probe, appLogger),
	}, tokens)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           routes.WithCORS(router, cfg.CORS.AllowedOrigins, cfg.CORS.MaxAge),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sched.Run(gctx)
	})

	if cfg.PriceFeed.Enabled {
		feed := pricefeed.NewKlineClient(cfg.PriceFeed.URL, entity.Market55Five, cfg.PriceFeed.ReconnectDelay, markets, appLogger)
		g.Go(func() error {
			return feed.Run(gctx)
		})
	}

	if db.cleanup != nil {
		g.Go(func() error {
			cleanupExpiredLocks(gctx, db.cleanup, appLogger)
			return nil
		})
	}

	g.Go(func() error {
		appLogger.Info("Starting server", map[string]any{
			"port":   cfg.Server.Port,
			"env":    cfg.Environment,
			"driver": cfg.Database.Driver,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Server forced to shutdown", map[string]any{"error": err.Error()})
		}
		return nil
	})

	return g.Wait()
}

// openBackend connects the configured store. The memory driver keeps
// everything in process and has no lock table or pool to report.
func openBackend(ctx context.Context, cfg *config.Config, appLogger coreport.Logger, tp coreport.TimeProvider) (*backend, error) {
	if cfg.Database.Driver == "memory" {
		appLogger.Warn("Using in-memory store; balances are lost on restart", nil)
		return &backend{
			store: memory.NewStore(tp),
			close: func() error { return nil },
		}, nil
	}

	dbConfig, err := database.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}

	manager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := manager.Connect(ctx); err != nil {
		return nil, err
	}
	if err := manager.Migrate(ctx); err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	uow := manager.CreateUnitOfWork()
	locks := uow.Locks()
	return &backend{
		store:   uow,
		locks:   locks,
		cleanup: locks.CleanupExpiredLocks,
		probe:   manager,
		close:   manager.Close,
	}, nil
}

// openPriceCache picks redis when enabled, else a process-local cache
func openPriceCache(ctx context.Context, cfg *config.Config, appLogger coreport.Logger) (cacheport.PriceCache, func(), error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryPriceCache(), func() {}, nil
	}

	redisCache, err := cache.NewRedisPriceCache(ctx, cache.RedisConfig{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
	}, appLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			appLogger.Warn("Failed to close redis", map[string]any{"error": err.Error()})
		}
	}, nil
}

func cleanupExpiredLocks(ctx context.Context, cleanup func(context.Context) (int64, error), appLogger coreport.Logger) {
	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := cleanup(ctx)
			if err != nil {
				appLogger.Warn("Failed to clean up expired user locks", map[string]any{"error": err.Error()})
				continue
			}
			if removed > 0 {
				appLogger.Debug("Expired user locks removed", map[string]any{"removed": removed})
			}
		}
	}
}
