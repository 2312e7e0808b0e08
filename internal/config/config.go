package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"voice-coach-go/internal/llm"
)

type Config struct {
	Port         string        `mapstructure:"port"`
	Environment  string        `mapstructure:"environment"`
	LogLevel     string        `mapstructure:"log_level"`
	DatasetPath  string        `mapstructure:"dataset_path"`
	SessionLimit time.Duration `mapstructure:"session_limit"`
	Retention    time.Duration `mapstructure:"session_retention"`
	RandomSeed   uint64        `mapstructure:"random_seed"`
	ExportDir    string        `mapstructure:"export_dir"`
	LLM          LLMConfig     `mapstructure:",squash"`
}

type LLMConfig struct {
	Enabled     bool          `mapstructure:"use_llm"`
	Mock        bool          `mapstructure:"use_mock_llm"`
	GatewayURL  string        `mapstructure:"llm_gateway_url"`
	APIKey      string        `mapstructure:"llm_api_key"`
	Model       string        `mapstructure:"llm_model"`
	Temperature float64       `mapstructure:"llm_temperature"`
	Timeout     time.Duration `mapstructure:"llm_timeout"`
	MaxRetry    time.Duration `mapstructure:"llm_max_retry"`
}

// API status values reported in exports.
const (
	StatusConfigured    = "configured"
	StatusMock          = "mock"
	StatusDisabled      = "disabled"
	StatusNotConfigured = "not configured"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "local")
	v.SetDefault("log_level", "info")
	v.SetDefault("dataset_path", "")
	v.SetDefault("session_limit", 15*time.Minute)
	v.SetDefault("session_retention", 30*time.Minute)
	v.SetDefault("random_seed", 0)
	v.SetDefault("export_dir", ".")
	v.SetDefault("use_llm", false)
	v.SetDefault("use_mock_llm", false)
	v.SetDefault("llm_gateway_url", "")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_model", "gpt-4o-mini")
	v.SetDefault("llm_temperature", 0.6)
	v.SetDefault("llm_timeout", 12*time.Second)
	v.SetDefault("llm_max_retry", 20*time.Second)
}

// Load reads configuration from the environment and, when file is not
// empty, from a yaml/json/toml file. Environment variables win.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.SessionLimit < 0 {
		return nil, fmt.Errorf("session_limit must not be negative, got %s", cfg.SessionLimit)
	}
	if cfg.Retention < 0 {
		return nil, fmt.Errorf("session_retention must not be negative, got %s", cfg.Retention)
	}
	return &cfg, nil
}

// Seed returns the configured seed, or a time based one when it is 0.
func (c *Config) Seed() uint64 {
	if c.RandomSeed != 0 {
		return c.RandomSeed
	}
	return uint64(time.Now().UnixNano())
}

// UseGenerator reports whether customer replies should go through the LLM.
func (c *Config) UseGenerator() bool {
	return c.LLM.Mock || (c.LLM.Enabled && c.LLM.GatewayURL != "" && c.LLM.APIKey != "")
}

func (c *Config) LLMClientConfig() llm.Config {
	return llm.Config{
		GatewayURL:  c.LLM.GatewayURL,
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		Temperature: c.LLM.Temperature,
		Timeout:     c.LLM.Timeout,
		MaxRetry:    c.LLM.MaxRetry,
		Mock:        c.LLM.Mock,
	}
}

// APIStatus describes the optional collaborators for session exports.
func (c *Config) APIStatus() map[string]string {
	status := map[string]string{"llm": StatusNotConfigured, "dataset": StatusNotConfigured}
	switch {
	case c.LLM.Mock:
		status["llm"] = StatusMock
	case c.LLM.GatewayURL != "" && c.LLM.APIKey != "":
		status["llm"] = StatusConfigured
		if !c.LLM.Enabled {
			status["llm"] = StatusDisabled
		}
	}
	if c.DatasetPath != "" {
		status["dataset"] = StatusConfigured
	}
	return status
}
