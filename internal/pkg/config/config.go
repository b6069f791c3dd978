package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Supplier  SupplierConfig  `mapstructure:"supplier"`
	Search    SearchConfig    `mapstructure:"search"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// IsDevelopment reports whether error details may be exposed to clients.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	RequestTimeout int      `mapstructure:"request_timeout"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

// SupplierConfig configures the Servivuelo client.
type SupplierConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Prefix    string `mapstructure:"prefix"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// Timeout is the per-call deadline.
func (s SupplierConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// SearchConfig bounds the search fan-out.
type SearchConfig struct {
	LookupConcurrency   int `mapstructure:"lookup_concurrency"`
	StationConcurrency  int `mapstructure:"station_concurrency"`
	CorrelationCacheTTL int `mapstructure:"correlation_cache_ttl"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// Load reads configuration from .env, an optional config file and
// environment variables, in increasing priority.
func Load(service string) (*Config, error) {
	// .env only seeds variables that are not already set.
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("app.name", service)
	v.SetDefault("app.env", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.request_timeout", 55)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "trainengine")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "trainengine")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("supplier.base_url", "http://localhost:9090")
	v.SetDefault("supplier.prefix", "SERVIVUELO")
	v.SetDefault("supplier.timeout_ms", 10000)
	v.SetDefault("search.lookup_concurrency", 16)
	v.SetDefault("search.station_concurrency", 4)
	v.SetDefault("search.correlation_cache_ttl", 300)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "journey-search")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TRAINENGINE_SUPPLIER_BASE_URL → supplier.base_url
	v.SetEnvPrefix("TRAINENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if !strings.HasPrefix(c.Supplier.BaseURL, "http://") && !strings.HasPrefix(c.Supplier.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("supplier.base_url must be an http(s) URL, got %q", c.Supplier.BaseURL))
	}
	if c.Supplier.Prefix == "" {
		errs = append(errs, "supplier.prefix is required")
	}
	if c.Supplier.TimeoutMS <= 0 {
		errs = append(errs, "supplier.timeout_ms must be positive")
	}
	if c.Search.LookupConcurrency <= 0 {
		errs = append(errs, "search.lookup_concurrency must be positive")
	}
	if c.Search.StationConcurrency <= 0 {
		errs = append(errs, "search.station_concurrency must be positive")
	}
	if c.Search.CorrelationCacheTTL < 0 {
		errs = append(errs, "search.correlation_cache_ttl must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
