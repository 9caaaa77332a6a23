package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Flights  FlightsConfig  `yaml:"flights"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
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

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers          []string `yaml:"brokers"`
	BookingTopic     string   `yaml:"booking_events_topic"`
	SeatUpdatesTopic string   `yaml:"seat_updates_topic"`
	GroupID          string   `yaml:"group_id"`
}

// FlightsConfig points at the flight-management service that owns schedule master data.
type FlightsConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type BookingConfig struct {
	SeatBlockTTLMinutes  int `yaml:"seat_block_ttl_minutes"`
	SeatCacheTTLHours    int `yaml:"seat_cache_ttl_hours"`
	PaymentDelayMillis   int `yaml:"payment_delay_millis"`
	CancelCutoffHours    int `yaml:"cancel_cutoff_hours"`
	PublishRetryAttempts int `yaml:"publish_retry_attempts"`
}

type WorkerConfig struct {
	StaleSweepMinutes int    `yaml:"stale_sweep_minutes"`
	DedupePath        string `yaml:"dedupe_path"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
