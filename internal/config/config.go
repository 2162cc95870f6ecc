package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sollytics/provenance/internal/analyzer"
	"github.com/sollytics/provenance/internal/api"
	"github.com/sollytics/provenance/internal/flows"
	"github.com/sollytics/provenance/internal/narrative"
	"github.com/sollytics/provenance/internal/solana"
)

// Config is the root configuration structure for the provenance service.
type Config struct {
	General   GeneralConfig   `yaml:"general"`
	Server    ServerConfig    `yaml:"server"`
	Provider  ProviderConfig  `yaml:"provider"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Narrative NarrativeConfig `yaml:"narrative"`
}

type GeneralConfig struct {
	InstanceID  string `yaml:"instance_id"`
	Environment string `yaml:"environment"` // production|staging|development
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // json|text
}

type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	IdleTimeoutSec  int      `yaml:"idle_timeout_sec"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

type ProviderConfig struct {
	Endpoint       string  `yaml:"endpoint"`
	APIKey         string  `yaml:"api_key"`
	TimeoutSec     int     `yaml:"timeout_sec"`
	MaxRetries     int     `yaml:"max_retries"`
	RetryBackoffMs int     `yaml:"retry_backoff_ms"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
}

type AnalysisConfig struct {
	HistoryLimit      int     `yaml:"history_limit"`
	DetailConcurrency int     `yaml:"detail_concurrency"`
	FetchTimeoutSec   int     `yaml:"fetch_timeout_sec"`
	LargeTransferSOL  float64 `yaml:"large_transfer_sol"`
	MaxNodes          int     `yaml:"max_nodes"`
	MaxEdges          int     `yaml:"max_edges"`
}

type NarrativeConfig struct {
	Enabled     bool    `yaml:"enabled"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.General.InstanceID == "" {
		cfg.General.InstanceID = "provenance-1"
	}
	if cfg.General.Environment == "" {
		cfg.General.Environment = "development"
	}
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = "info"
	}
	if cfg.General.LogFormat == "" {
		cfg.General.LogFormat = "json"
	}
}

// APIConfig converts the server section to the HTTP server config, filling
// gaps with the engine defaults.
func (c ServerConfig) APIConfig() api.Config {
	out := api.DefaultConfig()
	if c.Addr != "" {
		out.Addr = c.Addr
	}
	if c.ReadTimeoutSec > 0 {
		out.ReadTimeout = time.Duration(c.ReadTimeoutSec) * time.Second
	}
	if c.WriteTimeoutSec > 0 {
		out.WriteTimeout = time.Duration(c.WriteTimeoutSec) * time.Second
	}
	if c.IdleTimeoutSec > 0 {
		out.IdleTimeout = time.Duration(c.IdleTimeoutSec) * time.Second
	}
	if len(c.AllowedOrigins) > 0 {
		out.AllowedOrigins = c.AllowedOrigins
	}
	return out
}

// ClientConfig converts the provider section to the chain client config.
func (c ProviderConfig) ClientConfig() solana.ClientConfig {
	out := solana.DefaultClientConfig()
	if c.Endpoint != "" {
		out.Endpoint = c.Endpoint
	}
	if c.APIKey != "" {
		out.APIKey = c.APIKey
	}
	if c.TimeoutSec > 0 {
		out.Timeout = time.Duration(c.TimeoutSec) * time.Second
	}
	if c.MaxRetries > 0 {
		out.MaxRetries = c.MaxRetries
	}
	if c.RetryBackoffMs > 0 {
		out.RetryBackoff = time.Duration(c.RetryBackoffMs) * time.Millisecond
	}
	if c.RateLimitRPS > 0 {
		out.RateLimitRPS = c.RateLimitRPS
	}
	return out
}

// AnalyzerConfig converts the analysis section to the analyzer config.
func (c AnalysisConfig) AnalyzerConfig() analyzer.Config {
	out := analyzer.DefaultConfig()
	if c.HistoryLimit > 0 {
		out.HistoryLimit = c.HistoryLimit
	}
	if c.DetailConcurrency > 0 {
		out.DetailConcurrency = c.DetailConcurrency
	}
	if c.FetchTimeoutSec > 0 {
		out.FetchTimeout = time.Duration(c.FetchTimeoutSec) * time.Second
	}
	if c.LargeTransferSOL > 0 {
		out.LargeTransferSOL = c.LargeTransferSOL
	}
	return out
}

// AggregatorConfig converts the analysis section to the graph caps.
func (c AnalysisConfig) AggregatorConfig() flows.AggregatorConfig {
	out := flows.DefaultAggregatorConfig()
	if c.MaxNodes > 0 {
		out.MaxNodes = c.MaxNodes
	}
	if c.MaxEdges > 0 {
		out.MaxEdges = c.MaxEdges
	}
	return out
}

// ExplainerConfig converts the narrative section to the explainer config.
func (c NarrativeConfig) ExplainerConfig() narrative.Config {
	out := narrative.DefaultConfig()
	out.Enabled = c.Enabled
	out.APIKey = c.APIKey
	out.BaseURL = c.BaseURL
	if c.Model != "" {
		out.Model = c.Model
	}
	if c.MaxTokens > 0 {
		out.MaxTokens = c.MaxTokens
	}
	if c.Temperature > 0 {
		out.Temperature = c.Temperature
	}
	if c.TimeoutSec > 0 {
		out.Timeout = time.Duration(c.TimeoutSec) * time.Second
	}
	return out
}
