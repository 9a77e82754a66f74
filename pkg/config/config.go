package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         Log    `yaml:"log"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		BodyLimit       string        `yaml:"body_limit" default:"8M"`
		RateLimit       struct {
			RPS   float64 `yaml:"rps" validate:"gte=0"`
			Burst int     `yaml:"burst" default:"20" validate:"gte=0"`
		} `yaml:"rate_limit"`
		TrustForwardedFor bool `yaml:"trust_forwarded_for"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics" validate:"startswith=/"`
	} `yaml:"metrics"`
	Slope Slope `yaml:"slope"`
	Kafka Kafka `yaml:"kafka"`
}

type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout"`
}

// Slope configures the enrichment step.
type Slope struct {
	TargetBand     string        `yaml:"target_band" default:"g" validate:"required"`
	MinHistLength  int           `yaml:"min_hist_length" default:"2" validate:"gte=2"`
	Workers        int           `yaml:"workers" validate:"gte=0"`
	FitTimeout     time.Duration `yaml:"fit_timeout" validate:"gte=0"`
	MaxEvaluations int           `yaml:"max_evaluations" validate:"gte=0"`
}

type Kafka struct {
	Enabled  bool     `yaml:"enabled"`
	Brokers  []string `yaml:"brokers" validate:"required_if=Enabled true"`
	Topic    string   `yaml:"topic" default:"alerts"`
	Consumer struct {
		GroupID         string        `yaml:"group_id" default:"alertslope"`
		AutoOffsetReset string        `yaml:"auto_offset_reset" default:"earliest" validate:"oneof=earliest latest"`
		Workers         int           `yaml:"workers" default:"4" validate:"gt=0"`
		BufferSize      int           `yaml:"buffer_size" default:"100" validate:"gt=0"`
		RetryMax        int           `yaml:"retry_max" default:"3" validate:"gte=0"`
		BackoffMin      time.Duration `yaml:"backoff_min" default:"50ms"`
		BackoffMax      time.Duration `yaml:"backoff_max" default:"2s"`
		DLQTopic        string        `yaml:"dlq_topic"`
		MinBytes        int           `yaml:"min_bytes" default:"10000"`
		MaxBytes        int           `yaml:"max_bytes" default:"10000000"`
	} `yaml:"consumer"`
}

var validate = validator.New()

// Default returns a configuration populated from struct defaults only.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file.
// Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// An empty path starts from defaults.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("SLOPE_TARGET_BAND"); v != "" {
		c.Slope.TargetBand = v
	}
	if v := os.Getenv("SLOPE_MIN_HIST_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SLOPE_MIN_HIST_LENGTH: %w", err)
		}
		c.Slope.MinHistLength = n
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Consumer.BackoffMax < c.Kafka.Consumer.BackoffMin {
		return fmt.Errorf("kafka.consumer.backoff_max must be >= backoff_min")
	}
	return nil
}
