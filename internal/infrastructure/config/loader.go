package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "WG"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	// a missing .env is normal outside development
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile loads the first .env file found in DotEnvPaths
func loadDotEnvFile() error {
	var lastError error
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}
	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)
	v.SetDefault("server.writeTimeout", 15)
	v.SetDefault("server.idleTimeout", 60)
	v.SetDefault("server.readHeaderTimeout", 10)
	v.SetDefault("server.shutdownTimeout", 10)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 30)
	v.SetDefault("database.connMaxIdleTime", 15)
	v.SetDefault("database.queryTimeout", 5)
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("ledger.queueSize", 100)
	v.SetDefault("ledger.lockTimeoutMs", 5000)
	v.SetDefault("ledger.demoDefault", "50000.00")
	v.SetDefault("ledger.demoResetThreshold", "5000.00")

	v.SetDefault("game.modes", []string{"30s", "1Min", "3Min", "5Min"})
	v.SetDefault("game.tickMs", 1000)
	v.SetDefault("game.lockWindow", 5)
	v.SetDefault("game.historySize", 100)
	v.SetDefault("game.seedCount", 20)
	v.SetDefault("game.payout.standard", "1.9")
	v.SetDefault("game.payout.digit", "9")
	v.SetDefault("game.payout.partial", "1.5")
	v.SetDefault("game.minStake", "1.00")
	v.SetDefault("game.maxMultiplier", 100)

	v.SetDefault("trading.floor", "1.00")
	v.SetDefault("trading.defaultLeverage", 10)
	v.SetDefault("trading.maxLeverage", 100)
	v.SetDefault("trading.minMargin", "1000.00")
	v.SetDefault("trading.sourceMode", "30s")
	v.SetDefault("trading.candleLimit", 100)

	v.SetDefault("wallet.minDeposit", "20000.00")
	v.SetDefault("wallet.minWithdraw", "50000.00")

	v.SetDefault("notification.displayDuration", 3)

	v.SetDefault("chat.deliveryDelayMs", 1000)
	v.SetDefault("chat.greeting", "Hi %s! How can we help you today?")

	v.SetDefault("bots.enabled", true)

	v.SetDefault("auth.issuer", "wingo-engine")
	v.SetDefault("auth.tokenTtl", 1440)
	v.SetDefault("auth.bcryptCost", 10)

	v.SetDefault("priceFeed.enabled", false)
	v.SetDefault("priceFeed.url", "wss://stream.binance.com:9443/ws/btcusdt@kline_1m")
	v.SetDefault("priceFeed.reconnectDelay", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.keyPrefix", "wingo")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subjectPrefix", "wingo")

	v.SetDefault("cors.allowedOrigins", []string{"*"})
	v.SetDefault("cors.maxAge", 300)
}

// getEnvironment determines the environment from WG_ENV, defaulting to development
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides makes environment variables win over file values for
// secrets and deployment-specific settings
func processEnvOverrides(v *viper.Viper) {
	overrides := map[string]string{
		"WG_DB_DRIVER":       "database.driver",
		"WG_DB_HOST":         "database.host",
		"WG_DB_PORT":         "database.port",
		"WG_DB_USERNAME":     "database.username",
		"WG_DB_PASSWORD":     "database.password",
		"WG_DB_NAME":         "database.database",
		"WG_DB_SSL_MODE":     "database.sslMode",
		"WG_DB_SEED_FILE":    "database.seedFile",
		"WG_SERVER_HOST":     "server.host",
		"WG_SERVER_PORT":     "server.port",
		"WG_LOGGER_LEVEL":    "logger.level",
		"WG_JWT_SECRET":      "auth.jwtSecret",
		"WG_REDIS_ADDR":      "redis.addr",
		"WG_REDIS_PASSWORD":  "redis.password",
		"WG_NATS_URL":        "nats.url",
		"WG_PRICE_FEED_URL":  "priceFeed.url",
		"WG_WALLET_QRIS_URL": "wallet.defaultQris",
	}
	for env, key := range overrides {
		if val := os.Getenv(env); val != "" {
			v.Set(key, val)
		}
	}

	if maxOpenConns := getEnvInt("WG_DB_MAX_OPEN_CONNS", 0); maxOpenConns > 0 {
		v.Set("database.maxOpenConns", maxOpenConns)
	}
	if maxIdleConns := getEnvInt("WG_DB_MAX_IDLE_CONNS", 0); maxIdleConns > 0 {
		v.Set("database.maxIdleConns", maxIdleConns)
	}
	if retryAttempts := getEnvInt("WG_DB_RETRY_ATTEMPTS", -1); retryAttempts >= 0 {
		v.Set("database.retryAttempts", retryAttempts)
	}
	if queueSize := getEnvInt("WG_LEDGER_QUEUE_SIZE", 0); queueSize > 0 {
		v.Set("ledger.queueSize", queueSize)
	}
	if lockTimeout := getEnvInt("WG_LEDGER_LOCK_TIMEOUT_MS", -1); lockTimeout >= 0 {
		v.Set("ledger.lockTimeoutMs", lockTimeout)
	}
	for env, key := range map[string]string{
		"WG_BOTS_ENABLED":       "bots.enabled",
		"WG_REDIS_ENABLED":      "redis.enabled",
		"WG_NATS_ENABLED":       "nats.enabled",
		"WG_PRICE_FEED_ENABLED": "priceFeed.enabled",
	} {
		if b, ok := getEnvBool(env); ok {
			v.Set(key, b)
		}
	}
}

// getEnvInt reads an integer environment variable
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

func getEnvBool(name string) (bool, bool) {
	valStr := os.Getenv(name)
	if valStr == "" {
		return false, false
	}
	b, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, false
	}
	return b, true
}

// processDurations converts time.Duration fields from their raw values to actual durations
func processDurations(config *Config) {
	config.Server.ReadTimeout = config.Server.ReadTimeout * time.Second
	config.Server.WriteTimeout = config.Server.WriteTimeout * time.Second
	config.Server.IdleTimeout = config.Server.IdleTimeout * time.Second
	config.Server.ReadHeaderTimeout = config.Server.ReadHeaderTimeout * time.Second
	config.Server.ShutdownTimeout = config.Server.ShutdownTimeout * time.Second

	config.Database.ConnMaxLifetime = config.Database.ConnMaxLifetime * time.Minute
	config.Database.ConnMaxIdleTime = config.Database.ConnMaxIdleTime * time.Minute
	config.Database.QueryTimeout = config.Database.QueryTimeout * time.Second
	config.Database.RetryDelay = config.Database.RetryDelay * time.Second

	config.Game.LockWindow = config.Game.LockWindow * time.Second
	config.Notification.DisplayDuration = config.Notification.DisplayDuration * time.Second
	config.Auth.TokenTTL = config.Auth.TokenTTL * time.Minute
	config.PriceFeed.ReconnectDelay = config.PriceFeed.ReconnectDelay * time.Second
}
