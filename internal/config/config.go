package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the remediation engine.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Detection DetectionConfig `yaml:"detection"`
	Decision  DecisionConfig  `yaml:"decision"`
	Executor  ExecutorConfig  `yaml:"executor"`
	Backend   BackendConfig   `yaml:"backend"`
	Source    SourceConfig    `yaml:"source"`
	Forecast  ForecastConfig  `yaml:"forecast"`
}

// ServerConfig controls the observability listener behaviour.
type ServerConfig struct {
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DetectionConfig tunes the window and outlier model.
type DetectionConfig struct {
	WindowCapacity    int     `yaml:"windowCapacity"`
	TrainingThreshold int     `yaml:"trainingThreshold"`
	Contamination     float64 `yaml:"contamination"`
	Trees             int     `yaml:"trees"`
	SubsampleSize     int     `yaml:"subsampleSize"`
	Seed              int64   `yaml:"seed"`
	ModelPath         string  `yaml:"modelPath"`
}

// DecisionConfig tunes remediation rules and cooldowns.
type DecisionConfig struct {
	Cooldown        time.Duration `yaml:"cooldown"`
	CooldownMaxKeys int           `yaml:"cooldownMaxKeys"`
	RulesPath       string        `yaml:"rulesPath"`
}

// ExecutorConfig controls action bookkeeping.
type ExecutorConfig struct {
	HistoryCapacity int `yaml:"historyCapacity"`
}

// BackendConfig selects the remediation backend adapter.
type BackendConfig struct {
	Kind           string        `yaml:"kind"`
	SimulatedDelay time.Duration `yaml:"simulatedDelay"`
	AgentAddress   string        `yaml:"agentAddress"`
}

// SourceConfig selects and tunes the metric sample feed.
type SourceConfig struct {
	Kind       string        `yaml:"kind"`
	Interval   time.Duration `yaml:"interval"`
	Seed       int64         `yaml:"seed"`
	SpikeEvery int           `yaml:"spikeEvery"`
	BaseURL    string        `yaml:"baseURL"`
	SamplePath string        `yaml:"samplePath"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ForecastConfig tunes proactive alerting.
type ForecastConfig struct {
	Steps      int                `yaml:"steps"`
	Alphas     map[string]float64 `yaml:"alphas"`
	Thresholds map[string]float64 `yaml:"thresholds"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("REMEDY_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Detection: DetectionConfig{
			WindowCapacity:    100,
			TrainingThreshold: 20,
			Contamination:     0.10,
			Trees:             100,
			SubsampleSize:     256,
			Seed:              42,
		},
		Decision: DecisionConfig{
			Cooldown:        60 * time.Second,
			CooldownMaxKeys: 128,
		},
		Executor: ExecutorConfig{HistoryCapacity: 500},
		Backend: BackendConfig{
			Kind:           "simulated",
			SimulatedDelay: 2 * time.Second,
		},
		Source: SourceConfig{
			Kind:       "simulated",
			Interval:   5 * time.Second,
			SpikeEvery: 0,
			SamplePath: "/api/v1/metrics/latest",
			Timeout:    5 * time.Second,
		},
		Forecast: ForecastConfig{
			Steps: 5,
			Thresholds: map[string]float64{
				"cpu":        85,
				"memory":     85,
				"latency":    1000,
				"error_rate": 8,
				"disk_io":    90,
			},
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REMEDY_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("REMEDY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("REMEDY_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("REMEDY_MODEL_PATH"); v != "" {
		cfg.Detection.ModelPath = v
	}
	if v := os.Getenv("REMEDY_RULES_PATH"); v != "" {
		cfg.Decision.RulesPath = v
	}
	if v := os.Getenv("REMEDY_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Decision.Cooldown = d
		}
	}
	if v := os.Getenv("REMEDY_BACKEND"); v != "" {
		cfg.Backend.Kind = v
	}
	if v := os.Getenv("REMEDY_AGENT_ADDRESS"); v != "" {
		cfg.Backend.AgentAddress = v
	}
	if v := os.Getenv("REMEDY_SOURCE"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("REMEDY_COLLECTOR_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("REMEDY_SAMPLE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Source.Interval = d
		}
	}
	if v := os.Getenv("REMEDY_SPIKE_EVERY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Source.SpikeEvery = n
		}
	}
	if v := os.Getenv("REMEDY_CONTAMINATION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f < 1 {
			cfg.Detection.Contamination = f
		}
	}
	if v := os.Getenv("REMEDY_TRAINING_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Detection.TrainingThreshold = n
		}
	}
	if v := os.Getenv("REMEDY_WINDOW_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Detection.WindowCapacity = n
		}
	}
	if v := os.Getenv("REMEDY_SIMULATED_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.SimulatedDelay = d
		}
	}
	if v := os.Getenv("REMEDY_HISTORY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Executor.HistoryCapacity = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("REMEDY_FORECAST_STEPS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Forecast.Steps = n
		}
	}
}
