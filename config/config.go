package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath                = "config.yaml"
	defaultHTTPAddress         = ":8080"
	defaultMaxGapMinutes       = 360
	defaultResultsCacheTTL     = 300
	defaultLogLevel            = "info"
	defaultMetricsNamespace    = "airroutes"
	defaultKafkaPublishRetries = 3
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Search   SearchConfig   `yaml:"search"`
	Data     DataConfig     `yaml:"data"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	// Empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Enabled reports whether a database was configured at all.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers        []string `yaml:"brokers"`
	FlightsTopic   string   `yaml:"flights_topic"`
	GroupID        string   `yaml:"group_id"`
	PublishRetries int      `yaml:"publish_retries"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.FlightsTopic != ""
}

type SearchConfig struct {
	MaxConnectionGapMinutes int `yaml:"max_connection_gap_minutes"`
	MaxExpansions           int `yaml:"max_expansions"`
	ResultsCacheTTLSeconds  int `yaml:"results_cache_ttl_seconds"`
}

func (s SearchConfig) MaxConnectionGap() time.Duration {
	return time.Duration(s.MaxConnectionGapMinutes) * time.Minute
}

func (s SearchConfig) ResultsCacheTTL() time.Duration {
	return time.Duration(s.ResultsCacheTTLSeconds) * time.Second
}

type DataConfig struct {
	FlightsFile string `yaml:"flights_file"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// LoadConfig reads a YAML file after loading a .env file if one exists.
// Zero values are replaced by defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if cfg.Search.MaxConnectionGapMinutes < 0 {
		return nil, fmt.Errorf("invalid config: search.max_connection_gap_minutes must not be negative")
	}

	return &cfg, nil
}

// PathFromEnv returns CONFIG_PATH or DefaultPath.
func PathFromEnv() string {
	_ = godotenv.Load()
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = defaultHTTPAddress
	}
	if c.Search.MaxConnectionGapMinutes == 0 {
		c.Search.MaxConnectionGapMinutes = defaultMaxGapMinutes
	}
	if c.Search.ResultsCacheTTLSeconds == 0 {
		c.Search.ResultsCacheTTLSeconds = defaultResultsCacheTTL
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaultMetricsNamespace
	}
	if c.Kafka.PublishRetries == 0 {
		c.Kafka.PublishRetries = defaultKafkaPublishRetries
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
}
