// Package config loads service configuration from an optional TOML file,
// an optional .env file and the environment, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTPConfig     `toml:"http"`
	Log      LogConfig      `toml:"log"`
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	Kafka    KafkaConfig    `toml:"kafka"`
	Accounts AccountsConfig `toml:"accounts"`
}

type HTTPConfig struct {
	Addr            string `toml:"addr"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	Metrics         bool   `toml:"metrics"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type StorageConfig struct {
	Driver string `toml:"driver"` // memory, sqlite or postgres
	DSN    string `toml:"dsn"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"` // empty disables the quote cache
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	QuoteTTL string `toml:"quote_ttl"`
}

type KafkaConfig struct {
	Brokers     []string `toml:"brokers"` // empty logs events instead
	TopicPrefix string   `toml:"topic_prefix"`
}

// AccountsConfig names the ledger accounts loans are booked against.
type AccountsConfig struct {
	Cash            string `toml:"cash"`
	LoansReceivable string `toml:"loans_receivable"`
	InterestIncome  string `toml:"interest_income"`
}

// DefaultConfig returns settings for a local, dependency-free run.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
			Metrics:         true,
		},
		Log: LogConfig{Level: "info"},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Redis: RedisConfig{QuoteTTL: "5m"},
		Kafka: KafkaConfig{TopicPrefix: "microfinance."},
		Accounts: AccountsConfig{
			Cash:            "cash",
			LoansReceivable: "loans-receivable",
			InterestIncome:  "interest-income",
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.HTTP.Addr, "MF_HTTP_ADDR")
	setString(&c.HTTP.ShutdownTimeout, "MF_HTTP_SHUTDOWN_TIMEOUT")
	setString(&c.Log.Level, "MF_LOG_LEVEL")
	setString(&c.Storage.Driver, "MF_STORAGE_DRIVER")
	setString(&c.Storage.DSN, "MF_STORAGE_DSN")
	setString(&c.Redis.Addr, "MF_REDIS_ADDR")
	setString(&c.Redis.Password, "MF_REDIS_PASSWORD")
	setString(&c.Redis.QuoteTTL, "MF_REDIS_QUOTE_TTL")
	setString(&c.Kafka.TopicPrefix, "MF_KAFKA_TOPIC_PREFIX")
	setString(&c.Accounts.Cash, "MF_ACCOUNT_CASH")
	setString(&c.Accounts.LoansReceivable, "MF_ACCOUNT_LOANS_RECEIVABLE")
	setString(&c.Accounts.InterestIncome, "MF_ACCOUNT_INTEREST_INCOME")

	if v, ok := os.LookupEnv("MF_KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}
	if err := setBool(&c.HTTP.Metrics, "MF_HTTP_METRICS"); err != nil {
		return err
	}
	if err := setBool(&c.Log.Development, "MF_LOG_DEVELOPMENT"); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("MF_REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MF_REDIS_DB: %w", err)
		}
		c.Redis.DB = n
	}
	return nil
}

// Validate checks values that cannot be caught by decoding.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage driver %s needs a dsn", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}
	if _, err := c.QuoteTTL(); err != nil {
		return err
	}
	return nil
}

func (c Config) ShutdownTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.HTTP.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("http.shutdown_timeout: %w", err)
	}
	return d, nil
}

func (c Config) QuoteTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Redis.QuoteTTL)
	if err != nil {
		return 0, fmt.Errorf("redis.quote_ttl: %w", err)
	}
	return d, nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
