package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	LogFormat  string            `yaml:"log_format"`
	LogFile    string            `yaml:"log_file"`
	GrpcHost   string            `yaml:"grpc_host"`
	GrpcPort   int               `yaml:"grpc_port"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	Retry      MRetryConfig      `yaml:"retry"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Polling    MPollingConfig    `yaml:"polling"`
	Dashboard  MDashboardConfig  `yaml:"dashboard"`
	Redis      MRedisConfig      `yaml:"redis"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

// MRetryConfig describes the backoff shape used by every fetch.
// Backoff is "growing" (UnitMs multiplied by the attempt index after each
// failure) or "random" (uniform in [MinMs, MaxMs]).
type MRetryConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Backoff     string `yaml:"backoff"`
	UnitMs      int    `yaml:"unit_ms"`
	MaxDelayMs  int    `yaml:"max_delay_ms"`
	MinMs       int    `yaml:"min_ms"`
	MaxMs       int    `yaml:"max_ms"`
}

type MDataSourceConfig struct {
	Name         string            `yaml:"name"`
	BaseURL      string            `yaml:"base_url"`
	Symbols      []string          `yaml:"symbols"`
	DisplayNames map[string]string `yaml:"display_names"`
}

type MPollingConfig struct {
	Price   MCycleConfig `yaml:"price"`
	Logo    MCycleConfig `yaml:"logo"`
	HighLow MCycleConfig `yaml:"highlow"`
}

// MCycleConfig holds the cadence of one polling cycle. Schedule, when set,
// is a cron expression and takes precedence over IntervalSeconds.
type MCycleConfig struct {
	Disabled        bool   `yaml:"disabled"`
	IntervalSeconds int    `yaml:"interval_seconds"`
	Schedule        string `yaml:"schedule"`
	MarketHoursOnly bool   `yaml:"market_hours_only"`
}

type MDashboardConfig struct {
	HistoryDays int  `yaml:"history_days"`
	Compact     bool `yaml:"compact"`
}

type MRedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Cycle returns the cadence settings of the given kind.
func (c *MPollingConfig) Cycle(kind DataKind) MCycleConfig {
	switch kind {
	case KindLogo:
		return c.Logo
	case KindHighLow:
		return c.HighLow
	default:
		return c.Price
	}
}
