package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shubham-shewale/crypto-ticker/pkg/pricefeed"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Processor ProcessorConfig `mapstructure:"processor"`
	Ticker    TickerConfig    `mapstructure:"ticker"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"` // e.g., "local", "prod"
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type ProcessorConfig struct {
	NumWorkers  int           `mapstructure:"num_workers"`
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
}

// TickerConfig drives the simulated price feed.
type TickerConfig struct {
	Interval         time.Duration          `mapstructure:"interval"`
	MaxPriceFraction float64                `mapstructure:"max_price_fraction"`
	ChangeJitter     float64                `mapstructure:"change_jitter"`
	Instruments      []pricefeed.Instrument `mapstructure:"instruments"`
}

// FeedConfig returns the perturbation bounds for the simulator.
func (t TickerConfig) FeedConfig() pricefeed.Config {
	return pricefeed.Config{
		MaxPriceFraction: t.MaxPriceFraction,
		ChangeJitter:     t.ChangeJitter,
	}
}

// NewSimulator builds a simulator from the configured instruments and bounds.
// Extra options are applied last.
func (t TickerConfig) NewSimulator(opts ...pricefeed.Option) (*pricefeed.Simulator, error) {
	all := append([]pricefeed.Option{pricefeed.WithConfig(t.FeedConfig())}, opts...)
	return pricefeed.NewSimulator(t.Instruments, all...)
}

// Symbols returns the configured symbols in display order.
func (t TickerConfig) Symbols() []string {
	return pricefeed.FeedState(t.Instruments).Symbols()
}

// LoadConfig reads configuration from .env file, config.yaml, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// 1. Load .env file into System Environment (if it exists)
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Maps dot-notation to underscores (e.g., "app.port" -> "APP_PORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Viper only maps flat env vars (APP_PORT) onto nested structs for bound keys
	bindEnv(v, "app.port", "app.env")
	bindEnv(v, "redis.addr", "redis.password", "redis.db")
	bindEnv(v, "kafka.brokers", "kafka.topic", "kafka.group_id")
	bindEnv(v, "processor.num_workers", "processor.snapshot_ttl")
	bindEnv(v, "ticker.interval", "ticker.max_price_fraction", "ticker.change_jitter")
	bindEnv(v, "logger.level", "logger.file", "logger.max_size_mb", "logger.max_backups")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if len(cfg.Ticker.Instruments) == 0 {
		cfg.Ticker.Instruments = pricefeed.DefaultInstruments()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "crypto_ticks")
	v.SetDefault("kafka.group_id", "ticker-processor-group")

	v.SetDefault("processor.num_workers", 4)
	v.SetDefault("processor.snapshot_ttl", time.Hour)

	v.SetDefault("ticker.interval", 5*time.Second)
	v.SetDefault("ticker.max_price_fraction", pricefeed.DefaultMaxPriceFraction)
	v.SetDefault("ticker.change_jitter", pricefeed.DefaultChangeJitter)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 3)
}

func (c *Config) validate() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers cannot be empty")
	}
	if c.Processor.NumWorkers <= 0 {
		return fmt.Errorf("processor num_workers must be positive, got %d", c.Processor.NumWorkers)
	}
	if c.Ticker.Interval <= 0 {
		return fmt.Errorf("ticker interval must be positive, got %s", c.Ticker.Interval)
	}
	if _, err := c.Ticker.NewSimulator(); err != nil {
		return fmt.Errorf("invalid ticker config: %w", err)
	}
	return nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
