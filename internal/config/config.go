package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the application
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Blockchain     BlockchainConfig
	TransferSource TransferSourceConfig
	Jobs           JobsConfig
}

type ServerConfig struct {
	Port           string   `env:"SERVER_PORT" envDefault:"8080"`
	Env            string   `env:"SERVER_ENV" envDefault:"development"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type DatabaseConfig struct {
	DSN           string `env:"DATABASE_URL"`
	Host          string `env:"DB_HOST" envDefault:"localhost"`
	Port          int    `env:"DB_PORT" envDefault:"5432"`
	User          string `env:"DB_USER" envDefault:"postgres"`
	Password      string `env:"DB_PASSWORD"`
	DBName        string `env:"DB_NAME" envDefault:"coffee_change"`
	SSLMode       string `env:"DB_SSLMODE" envDefault:"disable"`
	RunMigrations bool   `env:"DB_RUN_MIGRATIONS" envDefault:"true"`
}

// URL returns DATABASE_URL when set, otherwise a DSN built from the parts.
func (c DatabaseConfig) URL() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisConfig is optional; an empty URL disables the price cache and idempotency keys.
type RedisConfig struct {
	URL      string `env:"REDIS_URL"`
	Password string `env:"REDIS_PASSWORD"`
}

type BlockchainConfig struct {
	RPCURL               string        `env:"EVM_RPC_URL" envDefault:"https://sepolia.base.org"`
	OracleAddress        string        `env:"ORACLE_ADDRESS" envDefault:"0x3590Fe3A70Aee3EeE7D07e6a15b02F089853B3b2"`
	CoffeeChangeAddress  string        `env:"COFFEE_CHANGE_ADDRESS" envDefault:"0x449c5730788b0eebcbFF1D2935Ff107999328D61"`
	VerifyDepositReceipt bool          `env:"VERIFY_DEPOSIT_RECEIPT" envDefault:"false"`
	FallbackEthPrice     float64       `env:"FALLBACK_ETH_PRICE" envDefault:"2500"`
	PriceCacheTTL        time.Duration `env:"PRICE_CACHE_TTL" envDefault:"30s"`
}

type TransferSourceConfig struct {
	BaseURL           string        `env:"TRANSFER_SOURCE_URL" envDefault:"https://base-sepolia.blockscout.com"`
	TokenAddress      string        `env:"USDC_TOKEN_ADDRESS" envDefault:"0x036CbD53842c5426634e7929541eC2318f3dCF7e"`
	Timeout           time.Duration `env:"TRANSFER_SOURCE_TIMEOUT" envDefault:"10s"`
	RequestsPerSecond float64       `env:"TRANSFER_SOURCE_RPS" envDefault:"5"`
	Burst             int           `env:"TRANSFER_SOURCE_BURST" envDefault:"5"`
	MaxPages          int           `env:"TRANSFER_SOURCE_MAX_PAGES" envDefault:"1"`
}

type JobsConfig struct {
	ResyncInterval    time.Duration `env:"RESYNC_INTERVAL" envDefault:"15m"`
	ResyncConcurrency int           `env:"RESYNC_CONCURRENCY" envDefault:"4"`
}

var parseEnv = env.Parse

// Load reads configuration from the environment. When a variable cannot be
// parsed the whole configuration falls back to its defaults.
func Load() *Config {
	cfg := &Config{}
	if err := parseEnv(cfg); err != nil {
		log.Printf("⚠️ Invalid configuration, using defaults: %v", err)
		cfg = defaults()
	}
	return cfg
}

func defaults() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(err)
	}
	return cfg
}
