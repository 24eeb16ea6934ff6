package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/chat"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/scheduler"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/trading"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wager"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wallet"
	"github.com/shopspring/decimal"
)

// cents parses a configured money amount such as "20000.00"
func cents(field, amount string) (int64, error) {
	c, err := entity.ValidateAndConvertAmount(amount)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return c, nil
}

func positiveDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s must be positive", field)
	}
	return d, nil
}

// LedgerSettings converts the ledger section
func (c *Config) LedgerSettings() (ledger.Config, error) {
	cfg := ledger.DefaultConfig()
	if c.Ledger.QueueSize > 0 {
		cfg.QueueSize = c.Ledger.QueueSize
	}
	if c.Database.Driver != "memory" {
		cfg.LockTTL = time.Duration(c.Ledger.LockTimeoutMs) * time.Millisecond
	}
	var err error
	if cfg.DemoDefault, err = cents("ledger.demoDefault", c.Ledger.DemoDefault); err != nil {
		return cfg, err
	}
	if cfg.DemoResetThreshold, err = cents("ledger.demoResetThreshold", c.Ledger.DemoResetThreshold); err != nil {
		return cfg, err
	}
	if cfg.DemoResetThreshold > cfg.DemoDefault {
		return cfg, errors.New("ledger.demoResetThreshold exceeds ledger.demoDefault")
	}
	return cfg, nil
}

// PayoutTable converts the game.payout section
func (c *Config) PayoutTable() (entity.PayoutTable, error) {
	var (
		t   entity.PayoutTable
		err error
	)
	if t.Standard, err = positiveDecimal("game.payout.standard", c.Game.Payout.Standard); err != nil {
		return t, err
	}
	if t.Digit, err = positiveDecimal("game.payout.digit", c.Game.Payout.Digit); err != nil {
		return t, err
	}
	if t.Partial, err = positiveDecimal("game.payout.partial", c.Game.Payout.Partial); err != nil {
		return t, err
	}
	return t, nil
}

// SchedulerSettings converts the game section's round engine settings
func (c *Config) SchedulerSettings() (scheduler.Config, error) {
	cfg := scheduler.DefaultConfig()
	if len(c.Game.Modes) > 0 {
		cfg.Modes = cfg.Modes[:0:0]
		for _, s := range c.Game.Modes {
			m, err := entity.ParseGameMode(s)
			if err != nil {
				return cfg, fmt.Errorf("game.modes: %w", err)
			}
			cfg.Modes = append(cfg.Modes, m)
		}
	}
	if c.Game.TickMs > 0 {
		cfg.Tick = time.Duration(c.Game.TickMs) * time.Millisecond
	}
	if c.Game.HistorySize > 0 {
		cfg.HistorySize = c.Game.HistorySize
	}
	if c.Game.SeedCount >= 0 {
		cfg.SeedCount = c.Game.SeedCount
	}
	return cfg, nil
}

// WagerSettings converts the game section's placement limits
func (c *Config) WagerSettings() (wager.Config, error) {
	cfg := wager.DefaultConfig()
	cfg.BotsEnabled = c.Bots.Enabled
	var err error
	if cfg.MinStake, err = cents("game.minStake", c.Game.MinStake); err != nil {
		return cfg, err
	}
	if c.Game.MaxMultiplier > 0 {
		cfg.MaxMultiplier = c.Game.MaxMultiplier
	}
	return cfg, nil
}

// MarketSettings converts the trading section's price settings
func (c *Config) MarketSettings() (trading.MarketConfig, error) {
	cfg := trading.DefaultMarketConfig()
	for name, price := range c.Trading.InitialPrices {
		m, err := marketKey(name)
		if err != nil {
			return cfg, fmt.Errorf("trading.initialPrices: %w", err)
		}
		p, err := positiveDecimal("trading.initialPrices."+name, price)
		if err != nil {
			return cfg, err
		}
		cfg.InitialPrices[m] = p
	}
	if c.Trading.Floor != "" {
		floor, err := positiveDecimal("trading.floor", c.Trading.Floor)
		if err != nil {
			return cfg, err
		}
		cfg.Floor = floor
	}
	if c.Trading.SourceMode != "" {
		m, err := entity.ParseGameMode(c.Trading.SourceMode)
		if err != nil {
			return cfg, fmt.Errorf("trading.sourceMode: %w", err)
		}
		cfg.SourceMode = m
	}
	if c.Trading.CandleLimit > 0 {
		cfg.CandleLimit = c.Trading.CandleLimit
	}
	return cfg, nil
}

// marketKey resolves a map key that viper may have lower-cased
func marketKey(name string) (entity.MarketID, error) {
	for _, m := range entity.AllMarkets() {
		if strings.EqualFold(string(m), name) {
			return m, nil
		}
	}
	return entity.ParseMarket(name)
}

// TradingSettings converts the trading section's position limits
func (c *Config) TradingSettings() (trading.Config, error) {
	cfg := trading.DefaultConfig()
	var err error
	if cfg.MinMargin, err = cents("trading.minMargin", c.Trading.MinMargin); err != nil {
		return cfg, err
	}
	if c.Trading.DefaultLeverage > 0 {
		cfg.DefaultLeverage = c.Trading.DefaultLeverage
	}
	if c.Trading.MaxLeverage > 0 {
		cfg.MaxLeverage = c.Trading.MaxLeverage
	}
	if cfg.DefaultLeverage > cfg.MaxLeverage {
		return cfg, errors.New("trading.defaultLeverage exceeds trading.maxLeverage")
	}
	return cfg, nil
}

// WalletSettings converts the wallet section
func (c *Config) WalletSettings() (wallet.Config, error) {
	cfg := wallet.DefaultConfig()
	cfg.DefaultQRIS = c.Wallet.DefaultQRIS
	var err error
	if cfg.MinDeposit, err = cents("wallet.minDeposit", c.Wallet.MinDeposit); err != nil {
		return cfg, err
	}
	if cfg.MinWithdraw, err = cents("wallet.minWithdraw", c.Wallet.MinWithdraw); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ChatSettings converts the chat section
func (c *Config) ChatSettings() chat.Config {
	cfg := chat.DefaultConfig()
	if c.Chat.DeliveryDelayMs >= 0 {
		cfg.DeliveryDelay = time.Duration(c.Chat.DeliveryDelayMs) * time.Millisecond
	}
	cfg.Greeting = c.Chat.Greeting
	return cfg
}

// UserSettings converts the account settings
func (c *Config) UserSettings() (user.Config, error) {
	cfg := user.DefaultConfig()
	demo, err := cents("ledger.demoDefault", c.Ledger.DemoDefault)
	if err != nil {
		return cfg, err
	}
	cfg.DemoBalance = demo
	return cfg, nil
}

// Validate checks every section that main converts into use-case settings
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.Host == "" || c.Database.Username == "" || c.Database.Database == "" {
			return errors.New("database host, username and name are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required (set WG_JWT_SECRET)")
	}
	if c.Environment == Production && len(c.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwtSecret must be at least 32 bytes in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if c.Game.LockWindow < 0 {
		return errors.New("game.lockWindow must not be negative")
	}
	if c.Notification.DisplayDuration <= 0 {
		return errors.New("notification.displayDuration must be positive")
	}

	if _, err := c.LedgerSettings(); err != nil {
		return err
	}
	if _, err := c.PayoutTable(); err != nil {
		return err
	}
	if _, err := c.SchedulerSettings(); err != nil {
		return err
	}
	if _, err := c.WagerSettings(); err != nil {
		return err
	}
	if _, err := c.MarketSettings(); err != nil {
		return err
	}
	if _, err := c.TradingSettings(); err != nil {
		return err
	}
	if _, err := c.WalletSettings(); err != nil {
		return err
	}
	return nil
}
