package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the service configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Events   EventsConfig   `mapstructure:"events"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the libpq connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type EventsConfig struct {
	// Retention caps the events kept in memory for /api/v1/events
	Retention int `mapstructure:"retention"`
}

type ForecastConfig struct {
	// LookbackWeeks is how many same-weekday observations feed each daily estimate
	LookbackWeeks int `mapstructure:"lookback_weeks"`
	// HistoryDays bounds the history read per forecast
	HistoryDays int `mapstructure:"history_days"`
	DefaultDays int `mapstructure:"default_days"`
	// Concurrency bounds the fan-out when recommending for every SKU
	Concurrency int `mapstructure:"concurrency"`
}

type StoreConfig struct {
	// Inventory is "postgres" or "memory"
	Inventory string `mapstructure:"inventory"`
	// Policy is "postgres", "pebble" or "memory"
	Policy    string `mapstructure:"policy"`
	PebbleDir string `mapstructure:"pebble_dir"`
	// SeedCSV is loaded into the memory inventory store at startup
	SeedCSV string `mapstructure:"seed_csv"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads config.yaml from ./configs or the working directory, then applies env overrides
func Load() (*Config, error) {
	return load("")
}

// LoadFile reads the given config file, then applies env overrides
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail late at startup
func (c *Config) Validate() error {
	switch c.Store.Inventory {
	case "postgres", "memory":
	default:
		return fmt.Errorf("store.inventory must be postgres or memory, got %q", c.Store.Inventory)
	}
	switch c.Store.Policy {
	case "postgres", "pebble", "memory":
	default:
		return fmt.Errorf("store.policy must be postgres, pebble or memory, got %q", c.Store.Policy)
	}
	if c.Store.Policy == "pebble" && c.Store.PebbleDir == "" {
		return fmt.Errorf("store.pebble_dir is required for the pebble policy store")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	if c.Events.Retention < 1 {
		return fmt.Errorf("events.retention must be at least 1, got %d", c.Events.Retention)
	}
	if c.Forecast.LookbackWeeks < 1 {
		return fmt.Errorf("forecast.lookback_weeks must be at least 1, got %d", c.Forecast.LookbackWeeks)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "inventory")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 10*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.ttl", time.Hour)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "replenishment-events")

	v.SetDefault("events.retention", 10000)

	v.SetDefault("forecast.lookback_weeks", 8)
	v.SetDefault("forecast.history_days", 730)
	v.SetDefault("forecast.default_days", 30)
	v.SetDefault("forecast.concurrency", 8)

	v.SetDefault("store.inventory", "postgres")
	v.SetDefault("store.policy", "postgres")
	v.SetDefault("store.pebble_dir", "data/policies")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")

	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")

	v.BindEnv("log.level", "LOG_LEVEL")
}

// GetEnvOrDefault returns the environment value for key or the default when unset
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
