package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment  string             `mapstructure:"environment"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Ledger       LedgerConfig       `mapstructure:"ledger"`
	Game         GameConfig         `mapstructure:"game"`
	Trading      TradingConfig      `mapstructure:"trading"`
	Wallet       WalletConfig       `mapstructure:"wallet"`
	Notification NotificationConfig `mapstructure:"notification"`
	Chat         ChatConfig         `mapstructure:"chat"`
	Bots         BotsConfig         `mapstructure:"bots"`
	Auth         AuthConfig         `mapstructure:"auth"`
	PriceFeed    PriceFeedConfig    `mapstructure:"priceFeed"`
	Redis        RedisConfig        `mapstructure:"redis"`
	NATS         NATSConfig         `mapstructure:"nats"`
	CORS         CORSConfig         `mapstructure:"cors"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or memory
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
	SeedFile        string        `mapstructure:"seedFile"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// LedgerConfig contains balance writer settings
type LedgerConfig struct {
	QueueSize          int    `mapstructure:"queueSize"`
	LockTimeoutMs      int64  `mapstructure:"lockTimeoutMs"` // zero disables the user lock table
	DemoDefault        string `mapstructure:"demoDefault"`
	DemoResetThreshold string `mapstructure:"demoResetThreshold"`
}

// PayoutConfig holds the winning multiples as decimal strings
type PayoutConfig struct {
	Standard string `mapstructure:"standard"`
	Digit    string `mapstructure:"digit"`
	Partial  string `mapstructure:"partial"`
}

// GameConfig contains round engine settings
type GameConfig struct {
	Modes         []string      `mapstructure:"modes"`
	TickMs        int64         `mapstructure:"tickMs"`
	LockWindow    time.Duration `mapstructure:"lockWindow"` // seconds
	HistorySize   int           `mapstructure:"historySize"`
	SeedCount     int           `mapstructure:"seedCount"`
	Payout        PayoutConfig  `mapstructure:"payout"`
	MinStake      string        `mapstructure:"minStake"`
	MaxMultiplier int64         `mapstructure:"maxMultiplier"`
}

// TradingConfig contains market and position settings
type TradingConfig struct {
	InitialPrices   map[string]string `mapstructure:"initialPrices"`
	Floor           string            `mapstructure:"floor"`
	DefaultLeverage int64             `mapstructure:"defaultLeverage"`
	MaxLeverage     int64             `mapstructure:"maxLeverage"`
	MinMargin       string            `mapstructure:"minMargin"`
	SourceMode      string            `mapstructure:"sourceMode"`
	CandleLimit     int               `mapstructure:"candleLimit"`
}

// WalletConfig contains deposit and withdrawal limits
type WalletConfig struct {
	MinDeposit  string `mapstructure:"minDeposit"`
	MinWithdraw string `mapstructure:"minWithdraw"`
	DefaultQRIS string `mapstructure:"defaultQris"`
}

// NotificationConfig contains notification queue settings
type NotificationConfig struct {
	DisplayDuration time.Duration `mapstructure:"displayDuration"` // seconds
}

// ChatConfig contains support chat settings
type ChatConfig struct {
	DeliveryDelayMs int64  `mapstructure:"deliveryDelayMs"`
	Greeting        string `mapstructure:"greeting"`
}

// BotsConfig toggles synthetic operator-view wagers
type BotsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AuthConfig contains session token settings
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwtSecret"`
	Issuer     string        `mapstructure:"issuer"`
	TokenTTL   time.Duration `mapstructure:"tokenTtl"` // minutes
	BcryptCost int           `mapstructure:"bcryptCost"`
}

// PriceFeedConfig contains the real market kline stream settings
type PriceFeedConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	ReconnectDelay time.Duration `mapstructure:"reconnectDelay"` // seconds
}

// RedisConfig contains the price cache connection
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

// NATSConfig contains the event fan-out connection
type NATSConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subjectPrefix"`
}

// CORSConfig contains cross-origin settings for the HTTP API
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	MaxAge         int      `mapstructure:"maxAge"` // seconds
}
