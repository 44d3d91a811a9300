package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Tracing    TracingConfig    `mapstructure:"tracing"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	StudentAPI StudentAPIConfig `mapstructure:"student_api"`
	Ingestion  IngestionConfig  `mapstructure:"ingestion"`
	Transfer   TransferConfig   `mapstructure:"transfer"`
	Log        LogConfig        `mapstructure:"log"`

	// Set from command-line flags, never read from the config file.
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	// Path is the database file when Driver is sqlite.
	Path     string
	LogLevel string `mapstructure:"log_level"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StudentAPIConfig points at the student registry used for PEN resolution
// and school-of-record lookups.
type StudentAPIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout_seconds"`
	CacheTTL time.Duration `mapstructure:"cache_ttl_minutes"`
}

type IngestionConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval_seconds"`
}

type TransferConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BatchSize    int           `mapstructure:"batch_size"`
	Workers      int           `mapstructure:"workers"`
	PollInterval time.Duration `mapstructure:"poll_interval_seconds"`
	ClaimTTL     time.Duration `mapstructure:"claim_ttl_minutes"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("student_api.timeout_seconds", 10)
	v.SetDefault("student_api.cache_ttl_minutes", 30)
	v.SetDefault("ingestion.enabled", true)
	v.SetDefault("ingestion.batch_size", 200)
	v.SetDefault("ingestion.poll_interval_seconds", 60)
	v.SetDefault("transfer.enabled", true)
	v.SetDefault("transfer.batch_size", 100)
	v.SetDefault("transfer.workers", 4)
	v.SetDefault("transfer.poll_interval_seconds", 60)
	v.SetDefault("transfer.claim_ttl_minutes", 30)
	v.SetDefault("rate_limit.max_requests", 100000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("ASSESSMENT_RESULTS")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.path", "DATABASE_PATH")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// Student API
	v.BindEnv("student_api.base_url", "STUDENT_API_BASE_URL")

	// Transfer
	v.BindEnv("transfer.enabled", "TRANSFER_ENABLED")
	v.BindEnv("transfer.batch_size", "TRANSFER_BATCH_SIZE")
	v.BindEnv("transfer.workers", "TRANSFER_WORKERS")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.StudentAPI.Timeout = cfg.StudentAPI.Timeout * time.Second
	cfg.StudentAPI.CacheTTL = cfg.StudentAPI.CacheTTL * time.Minute
	cfg.Ingestion.PollInterval = cfg.Ingestion.PollInterval * time.Second
	cfg.Transfer.PollInterval = cfg.Transfer.PollInterval * time.Second
	cfg.Transfer.ClaimTTL = cfg.Transfer.ClaimTTL * time.Minute

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Transfer.BatchSize <= 0 {
		return fmt.Errorf("transfer.batch_size must be positive, got %d", c.Transfer.BatchSize)
	}
	if c.Transfer.Workers <= 0 {
		return fmt.Errorf("transfer.workers must be positive, got %d", c.Transfer.Workers)
	}
	if c.Ingestion.BatchSize <= 0 {
		return fmt.Errorf("ingestion.batch_size must be positive, got %d", c.Ingestion.BatchSize)
	}
	if c.StudentAPI.BaseURL == "" && c.Server.Mode == "release" {
		return fmt.Errorf("student_api.base_url is required in release mode")
	}
	return nil
}
