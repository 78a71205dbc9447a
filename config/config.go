package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	SolanaConfig         SolanaConfig         `json:"solana"`
	JupiterConfig        JupiterConfig        `json:"jupiter"`
	TradingConfig        TradingConfig        `json:"trading"`
	StrategyConfig       StrategyConfig       `json:"strategy"`
	ModelConfig          ModelConfig          `json:"model"`
	CircuitBreakerConfig CircuitBreakerConfig `json:"circuit_breaker"`
	ServerConfig         ServerConfig         `json:"server"`
	RedisConfig          RedisConfig          `json:"redis"`
	LoggingConfig        LoggingConfig        `json:"logging"`
}

// SolanaConfig holds RPC node configuration
type SolanaConfig struct {
	RPCURL       string `json:"rpc_url"`
	Commitment   string `json:"commitment"`    // "processed", "confirmed", "finalized"
	MockMode     bool   `json:"mock_mode"`     // Use simulated chain data when no RPC is available
	WalletPubkey string `json:"wallet_pubkey"` // Public key trades are signed for
}

// JupiterConfig holds swap aggregator configuration
type JupiterConfig struct {
	QuoteAPIURL    string `json:"quote_api_url"`
	TokenListURL   string `json:"token_list_url"`
	PlatformFeeBps int    `json:"platform_fee_bps"`
	FeeAccount     string `json:"fee_account"`
	// Seconds to wait for on-chain confirmation before giving up
	ConfirmTimeoutSecs int `json:"confirm_timeout_secs"`
}

// TradingConfig holds trade execution limits
type TradingConfig struct {
	MaxAmount float64 `json:"max_amount"` // Max SOL committed per trade
	Slippage  float64 `json:"slippage"`   // Fraction, e.g. 0.01 = 1%
	DryRun    bool    `json:"dry_run"`    // Run the pipeline without submitting transactions
}

// StrategyConfig holds the scheduled strategy loop configuration
type StrategyConfig struct {
	Enabled          bool   `json:"enabled"`
	WalletAddress    string `json:"wallet_address"`
	TickIntervalSecs int    `json:"tick_interval_secs"`
}

// ModelConfig holds behavior classifier configuration.
// Defaults match the shipped model; changing them changes trading behavior.
type ModelConfig struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	TrainingEpochs      int     `json:"training_epochs"`
	HiddenUnits1        int     `json:"hidden_units_1"`
	HiddenUnits2        int     `json:"hidden_units_2"`
	DropoutRate         float64 `json:"dropout_rate"`
}

// CircuitBreakerConfig holds strategy loop circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled             bool `json:"enabled"`
	MaxConsecutiveFails int  `json:"max_consecutive_fails"` // Failed trades in a row before trip
	CooldownMinutes     int  `json:"cooldown_minutes"`      // Cooldown after trip
	MaxTradesPerMinute  int  `json:"max_trades_per_minute"` // Rate limit
	MaxDailyTrades      int  `json:"max_daily_trades"`      // Max executed trades per day
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int    `json:"port"`
	Host            string `json:"host"`
	AllowedOrigins  string `json:"allowed_origins"` // CORS allowed origins
	ProductionMode  bool   `json:"production_mode"`
	ReadTimeout     int    `json:"read_timeout"`     // Seconds
	WriteTimeout    int    `json:"write_timeout"`    // Seconds
	ShutdownTimeout int    `json:"shutdown_timeout"` // Seconds
}

// RedisConfig holds Redis configuration for the token list cache
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	JSONFormat bool   `json:"json_format"` // JSON output; console writer otherwise
}

func Load() (*Config, error) {
	// First try to load base config from file
	cfg, err := loadFromFile("config.json")
	if err != nil {
		// If no config file, start with empty config
		cfg = &Config{}
	}

	// Apply environment variable overrides (these take precedence)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Note: no signing keys are read here. The bot only ever holds a public key;
// transaction signing is the caller's concern.
func applyEnvOverrides(cfg *Config) {
	// Solana config
	cfg.SolanaConfig.RPCURL = getEnvOrDefault("SOLANA_RPC_URL", cfg.SolanaConfig.RPCURL)
	if cfg.SolanaConfig.RPCURL == "" {
		cfg.SolanaConfig.RPCURL = "https://api.mainnet-beta.solana.com"
	}
	cfg.SolanaConfig.Commitment = getEnvOrDefault("SOLANA_COMMITMENT", "confirmed")
	cfg.SolanaConfig.MockMode = getEnvOrDefault("MOCK_MODE", "false") == "true"
	cfg.SolanaConfig.WalletPubkey = getEnvOrDefault("SOLANA_WALLET_PUBKEY", cfg.SolanaConfig.WalletPubkey)

	// Jupiter config
	cfg.JupiterConfig.QuoteAPIURL = getEnvOrDefault("JUPITER_QUOTE_API_URL", cfg.JupiterConfig.QuoteAPIURL)
	if cfg.JupiterConfig.QuoteAPIURL == "" {
		cfg.JupiterConfig.QuoteAPIURL = "https://quote-api.jup.ag/v6"
	}
	cfg.JupiterConfig.TokenListURL = getEnvOrDefault("JUPITER_TOKEN_LIST_URL", cfg.JupiterConfig.TokenListURL)
	if cfg.JupiterConfig.TokenListURL == "" {
		cfg.JupiterConfig.TokenListURL = "https://token.jup.ag/all"
	}
	cfg.JupiterConfig.PlatformFeeBps = getEnvIntOrDefault("JUPITER_PLATFORM_FEE_BPS", cfg.JupiterConfig.PlatformFeeBps)
	cfg.JupiterConfig.FeeAccount = getEnvOrDefault("JUPITER_FEE_ACCOUNT", cfg.JupiterConfig.FeeAccount)
	cfg.JupiterConfig.ConfirmTimeoutSecs = getEnvIntOrDefault("JUPITER_CONFIRM_TIMEOUT", 60)

	// Trading config
	cfg.TradingConfig.MaxAmount = getEnvFloatOrDefault("TRADING_MAX_AMOUNT", 1.0)
	cfg.TradingConfig.Slippage = getEnvFloatOrDefault("TRADING_SLIPPAGE", 0.01)
	cfg.TradingConfig.DryRun = getEnvOrDefault("TRADING_DRY_RUN", "false") == "true"

	// Strategy config
	cfg.StrategyConfig.Enabled = getEnvOrDefault("STRATEGY_ENABLED", "false") == "true"
	cfg.StrategyConfig.WalletAddress = getEnvOrDefault("STRATEGY_WALLET_ADDRESS", cfg.StrategyConfig.WalletAddress)
	cfg.StrategyConfig.TickIntervalSecs = getEnvIntOrDefault("STRATEGY_TICK_INTERVAL", 300)

	// Model config
	cfg.ModelConfig.ConfidenceThreshold = getEnvFloatOrDefault("MODEL_CONFIDENCE_THRESHOLD", 0.7)
	cfg.ModelConfig.TrainingEpochs = getEnvIntOrDefault("MODEL_TRAINING_EPOCHS", 10)
	cfg.ModelConfig.HiddenUnits1 = getEnvIntOrDefault("MODEL_HIDDEN_UNITS_1", 64)
	cfg.ModelConfig.HiddenUnits2 = getEnvIntOrDefault("MODEL_HIDDEN_UNITS_2", 32)
	cfg.ModelConfig.DropoutRate = getEnvFloatOrDefault("MODEL_DROPOUT_RATE", 0.2)

	// Circuit breaker config
	cfg.CircuitBreakerConfig.Enabled = getEnvOrDefault("CIRCUIT_BREAKER_ENABLED", "true") == "true"
	cfg.CircuitBreakerConfig.MaxConsecutiveFails = getEnvIntOrDefault("CIRCUIT_MAX_CONSECUTIVE_FAILS", 5)
	cfg.CircuitBreakerConfig.CooldownMinutes = getEnvIntOrDefault("CIRCUIT_COOLDOWN_MINUTES", 30)
	cfg.CircuitBreakerConfig.MaxTradesPerMinute = getEnvIntOrDefault("CIRCUIT_MAX_TRADES_PER_MINUTE", 10)
	cfg.CircuitBreakerConfig.MaxDailyTrades = getEnvIntOrDefault("CIRCUIT_MAX_DAILY_TRADES", 100)

	// Server config
	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", 8080)
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", "0.0.0.0")
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", "*")
	cfg.ServerConfig.ProductionMode = getEnvOrDefault("SERVER_PRODUCTION_MODE", "false") == "true"
	cfg.ServerConfig.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", 30)
	cfg.ServerConfig.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 30)
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10)

	// Redis config
	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", "false") == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", "localhost:6379")
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", 0)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", 10)

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", "true") == "true"
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

// Validate checks config invariants that would otherwise surface as
// confusing runtime failures deep in the pipeline.
func (c *Config) Validate() error {
	if c.TradingConfig.MaxAmount <= 0 {
		return fmt.Errorf("trading.max_amount must be positive, got %v", c.TradingConfig.MaxAmount)
	}
	if c.TradingConfig.Slippage <= 0 || c.TradingConfig.Slippage >= 1 {
		return fmt.Errorf("trading.slippage must be in (0, 1), got %v", c.TradingConfig.Slippage)
	}
	if c.ModelConfig.ConfidenceThreshold < 0 || c.ModelConfig.ConfidenceThreshold > 1 {
		return fmt.Errorf("model.confidence_threshold must be in [0, 1], got %v", c.ModelConfig.ConfidenceThreshold)
	}
	if c.StrategyConfig.Enabled && c.StrategyConfig.WalletAddress == "" {
		return fmt.Errorf("strategy.wallet_address is required when the strategy loop is enabled")
	}
	return nil
}

// ConfirmTimeout returns the confirmation wait deadline as a duration.
func (c *JupiterConfig) ConfirmTimeout() time.Duration {
	if c.ConfirmTimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.ConfirmTimeoutSecs) * time.Second
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
