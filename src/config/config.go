package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"stockstreamer/src/helpers"
	"stockstreamer/src/models"
	"stockstreamer/src/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Pick up a local .env if there is one
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 2. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a validated Config from YAML bytes, applying defaults and
// environment overrides.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "stockstreamer"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.GrpcPort == 0 {
		c.GrpcPort = 50051
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "stocks.db"
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Network.ConcurrentRequests == 0 {
		c.Network.ConcurrentRequests = 8
	}

	r := &c.Retry
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 5
	}
	if r.Backoff == "" {
		r.Backoff = "growing"
	}
	if r.UnitMs == 0 {
		r.UnitMs = 1000
	}
	if r.MinMs == 0 && r.MaxMs == 0 {
		r.MinMs, r.MaxMs = 500, 3000
	}

	if c.DataSource.Name == "" {
		c.DataSource.Name = "iex"
	}
	if c.DataSource.BaseURL == "" {
		c.DataSource.BaseURL = "https://api.iextrading.com/1.0/stock"
	}

	if c.Polling.Price.IntervalSeconds == 0 && c.Polling.Price.Schedule == "" {
		c.Polling.Price.IntervalSeconds = 5
	}
	if c.Polling.Logo.IntervalSeconds == 0 && c.Polling.Logo.Schedule == "" {
		c.Polling.Logo.IntervalSeconds = 3600
	}
	if c.Polling.HighLow.IntervalSeconds == 0 && c.Polling.HighLow.Schedule == "" {
		c.Polling.HighLow.IntervalSeconds = 3600
	}

	if c.Dashboard.HistoryDays == 0 {
		c.Dashboard.HistoryDays = 7
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
}

// -----------------------------------------------------------------------------

// applyEnv lets the environment override the file. DATABASE_URL is the
// connection target the dashboard has always read.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.DBConnectionString = v
		if os.Getenv("STOCKSTREAMER_DB_TYPE") == "" {
			c.Storage.DBType = "postgres"
		}
	}
	if v := os.Getenv("STOCKSTREAMER_DB_TYPE"); v != "" {
		c.Storage.DBType = v
	}
	if v := os.Getenv("STOCKSTREAMER_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("STOCKSTREAMER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("STOCKSTREAMER_SYMBOLS"); v != "" {
		var symbols []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, strings.ToUpper(s))
			}
		}
		c.DataSource.Symbols = symbols
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
}

// -----------------------------------------------------------------------------

func invalid(format string, args ...interface{}) error {
	return &helpers.ConfigurationError{StockStreamerError: helpers.StockStreamerError{Message: fmt.Sprintf(format, args...)}}
}

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate Server configuration
	if c.Host == "" {
		return invalid("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return invalid("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort <= 1024 || c.GrpcPort > 65535 {
		return invalid("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return invalid("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return invalid("database connection string cannot be empty for postgres")
		}
	default:
		return invalid("unsupported database type: %s", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return invalid("request timeout must be greater than 0")
	}
	if c.Network.ConcurrentRequests < 0 {
		return invalid("concurrent requests cannot be negative")
	}

	// Validate Retry configuration
	if c.Retry.MaxAttempts <= 0 {
		return invalid("retry max attempts must be greater than 0")
	}
	switch c.Retry.Backoff {
	case "growing":
		if c.Retry.UnitMs < 0 {
			return invalid("retry unit cannot be negative")
		}
	case "random":
		if c.Retry.MinMs < 0 || c.Retry.MaxMs < c.Retry.MinMs {
			return invalid("invalid random backoff window [%d, %d]", c.Retry.MinMs, c.Retry.MaxMs)
		}
	default:
		return invalid("unknown retry backoff: %s", c.Retry.Backoff)
	}

	// Validate DataSource configuration
	if c.DataSource.BaseURL == "" {
		return invalid("data source base url cannot be empty")
	}
	if len(c.DataSource.Symbols) == 0 {
		return invalid("at least one symbol must be configured")
	}
	seen := make(map[string]bool)
	for i, sym := range c.DataSource.Symbols {
		if sym == "" {
			return invalid("symbol %d cannot be empty", i)
		}
		if seen[sym] {
			return invalid("symbol %s is listed twice", sym)
		}
		seen[sym] = true
	}

	// Validate Polling configuration
	for _, kind := range models.AllKinds {
		cycle := c.Polling.Cycle(kind)
		if cycle.Schedule != "" {
			if _, err := utils.ParseSchedule(cycle.Schedule); err != nil {
				return invalid("invalid %s schedule %q: %v", kind, cycle.Schedule, err)
			}
			continue
		}
		if cycle.IntervalSeconds <= 0 {
			return invalid("%s interval must be greater than 0", kind)
		}
	}

	if c.Dashboard.HistoryDays <= 0 {
		return invalid("dashboard history days must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
