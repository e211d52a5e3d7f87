package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"StockPulse/pkg/util"
)

const (
	ProviderAlphaVantage = "alphavantage"
	ProviderYahoo        = "yahoo"

	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORS            struct {
			Enabled bool     `yaml:"enabled"`
			Origins []string `yaml:"origins"`
		} `yaml:"cors"`
	} `yaml:"server"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		Output     string `yaml:"output"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
	Metrics struct {
		Enabled       bool          `yaml:"enabled"`
		SlowThreshold time.Duration `yaml:"slow_threshold"`
	} `yaml:"metrics"`
	Provider struct {
		Name         string        `yaml:"name"`
		Timeout      time.Duration `yaml:"timeout"`
		AlphaVantage struct {
			APIKey     string `yaml:"api_key"`
			BaseURL    string `yaml:"base_url"`
			OutputSize string `yaml:"outputsize"`
		} `yaml:"alpha_vantage"`
		Yahoo struct {
			BaseURL   string `yaml:"base_url"`
			UserAgent string `yaml:"user_agent"`
		} `yaml:"yahoo"`
	} `yaml:"provider"`
	Store struct {
		Backend string `yaml:"backend"`
		SQLite  struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"store"`
	Cache struct {
		SeriesTTL     time.Duration `yaml:"series_ttl"`
		MemoryMaxSize int           `yaml:"memory_max_size"`
	} `yaml:"cache"`
	RateLimit struct {
		ClientCapacity   float64 `yaml:"client_capacity"`
		ClientRefill     float64 `yaml:"client_refill_per_sec"`
		ProviderCapacity float64 `yaml:"provider_capacity"`
		ProviderRefill   float64 `yaml:"provider_refill_per_sec"`
	} `yaml:"ratelimit"`
	Refresh struct {
		Enabled  bool          `yaml:"enabled"`
		Cron     string        `yaml:"cron"`
		Range    string        `yaml:"range"`
		Interval string        `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"refresh"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		Table            string        `yaml:"table"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Default returns a config that runs with no file: Yahoo provider, in-memory store,
// no Kafka or ClickHouse.
func Default() *Config {
	var c Config
	c.Environment = "development"

	c.Server.Port = 5000
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.CORS.Enabled = true
	c.Server.CORS.Origins = []string{"*"}

	c.Log.Level = "info"
	c.Log.Format = "json"
	c.Log.Output = "stdout"

	c.Metrics.Enabled = true
	c.Metrics.SlowThreshold = 2 * time.Second

	c.Provider.Name = ProviderYahoo
	c.Provider.Timeout = 10 * time.Second
	c.Provider.AlphaVantage.OutputSize = "compact"

	c.Store.Backend = StoreMemory
	c.Store.SQLite.Path = "data/stockpulse.db"
	c.Store.Redis.Addr = "localhost:6379"
	c.Store.Redis.Prefix = "stockpulse"

	c.Cache.SeriesTTL = time.Minute
	c.Cache.MemoryMaxSize = 1000

	c.RateLimit.ClientCapacity = 30
	c.RateLimit.ClientRefill = 1
	c.RateLimit.ProviderCapacity = 5
	c.RateLimit.ProviderRefill = 5.0 / 60

	c.Refresh.Enabled = true
	c.Refresh.Cron = "0 */5 * * * *"
	c.Refresh.Range = "5D"
	c.Refresh.Interval = "1d"
	c.Refresh.Timeout = 4 * time.Minute

	c.Kafka.Topic = "stockpulse.alerts"
	c.Kafka.RequiredAcks = 1
	c.Kafka.Compression = "snappy"
	c.Kafka.MaxAttempts = 3
	c.Kafka.WriteTimeout = 10 * time.Second

	c.ClickHouse.Host = "localhost"
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "default"
	c.ClickHouse.Table = "price_points"
	c.ClickHouse.User = "default"
	c.ClickHouse.DialTimeout = 5 * time.Second
	c.ClickHouse.ReadTimeout = 30 * time.Second
	c.ClickHouse.MaxExecutionTime = 30 * time.Second
	return &c
}

// Load reads a YAML configuration file over Default().
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads path (or Default() when path is empty) and applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		var err error
		if c, err = Load(path); err != nil {
			return nil, err
		}
	}

	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT must be a number, got %q", v)
		}
		c.Server.Port = port
	}
	if v := getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Provider.AlphaVantage.APIKey = v
	}
	if v := getenv("STOCK_PROVIDER"); v != "" {
		c.Provider.Name = strings.ToLower(v)
	}
	if v := getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = strings.ToLower(v)
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		c.Store.SQLite.Path = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORS.Origins = util.SplitCSV(v)
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid. A missing Alpha Vantage key is allowed;
// it is reported per request.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	switch c.Provider.Name {
	case ProviderAlphaVantage, ProviderYahoo:
	default:
		return fmt.Errorf("provider.name must be '%s' or '%s', got '%s'", ProviderAlphaVantage, ProviderYahoo, c.Provider.Name)
	}
	switch c.Store.Backend {
	case StoreMemory, StoreRedis:
	case StoreSQLite:
		if c.Store.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store.backend must be '%s', '%s' or '%s', got '%s'", StoreMemory, StoreSQLite, StoreRedis, c.Store.Backend)
	}
	if c.Store.Backend == StoreRedis && c.Store.Redis.Addr == "" {
		return errors.New("store.redis.addr is required for the redis backend")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return errors.New("kafka.topic is required when kafka is enabled")
		}
	}
	if c.ClickHouse.Enabled && (c.ClickHouse.Host == "" || c.ClickHouse.Table == "") {
		return errors.New("clickhouse.host and clickhouse.table are required when clickhouse is enabled")
	}
	if c.Refresh.Enabled && c.Refresh.Cron == "" {
		return errors.New("refresh.cron is required when refresh is enabled")
	}
	return nil
}
