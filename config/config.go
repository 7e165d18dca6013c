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
	Analysis AnalysisConfig `yaml:"analysis"`
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
	Brokers           []string `yaml:"brokers"`
	ObservationsTopic string   `yaml:"observations_topic"`
	StatsTopic        string   `yaml:"stats_topic"`
	GroupID           string   `yaml:"group_id"`
}

type AnalysisConfig struct {
	CacheTTLSeconds  int `yaml:"cache_ttl_seconds"`
	ForecastHorizon  int `yaml:"forecast_horizon_days"`
	CrossValidationK int `yaml:"cross_validation_folds"`
	FlightListLimit  int `yaml:"flight_list_limit"`
}

type WorkerConfig struct {
	IngestBatchSize    int `yaml:"ingest_batch_size"`
	IngestFlushSeconds int `yaml:"ingest_flush_seconds"`
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

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Analysis.CacheTTLSeconds == 0 {
		c.Analysis.CacheTTLSeconds = 300
	}
	if c.Analysis.ForecastHorizon == 0 {
		c.Analysis.ForecastHorizon = 30
	}
	if c.Analysis.CrossValidationK == 0 {
		c.Analysis.CrossValidationK = 5
	}
	if c.Analysis.FlightListLimit == 0 {
		c.Analysis.FlightListLimit = 20
	}
	if c.Worker.IngestBatchSize == 0 {
		c.Worker.IngestBatchSize = 100
	}
	if c.Worker.IngestFlushSeconds == 0 {
		c.Worker.IngestFlushSeconds = 10
	}
}
