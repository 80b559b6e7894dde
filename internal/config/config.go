// Package config resolves agent settings from flags, environment and an
// optional dimagent.yaml file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "DIMAGENT"
	FileName  = "dimagent"
)

type LLM struct {
	Model       string        `mapstructure:"model"`
	MaxTokens   int64         `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
	BaseURL     string        `mapstructure:"base_url"`
}

type Runner struct {
	MaxLLMCalls int  `mapstructure:"max_llm_calls"`
	TokenBudget int  `mapstructure:"token_budget"`
	Tools       bool `mapstructure:"tools"`
}

type Telemetry struct {
	Observe bool   `mapstructure:"observe"`
	Dir     string `mapstructure:"dir"`
}

type Config struct {
	Model     string    `mapstructure:"model"`
	ModelsDir string    `mapstructure:"models_dir"`
	LLM       LLM       `mapstructure:"llm"`
	Runner    Runner    `mapstructure:"runner"`
	Telemetry Telemetry `mapstructure:"telemetry"`
}

// SetDefaults registers every known key so AutomaticEnv can see it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("model", "test1")
	v.SetDefault("models_dir", "models")
	v.SetDefault("llm.model", "claude-3-7-sonnet-latest")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("runner.max_llm_calls", 10)
	v.SetDefault("runner.token_budget", 0)
	v.SetDefault("runner.tools", true)
	v.SetDefault("telemetry.observe", false)
	v.SetDefault("telemetry.dir", ".agent")
}

// Load reads cfgFile when given, else an optional dimagent.yaml in the
// working directory, then overlays DIMAGENT_* environment variables.
// Flags must be bound to v by the caller before Load.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch {
	case c.ModelsDir == "":
		return errors.New("config: models_dir must not be empty")
	case c.LLM.MaxTokens <= 0:
		return fmt.Errorf("config: llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	case c.LLM.Temperature < 0 || c.LLM.Temperature > 1:
		return fmt.Errorf("config: llm.temperature must be within [0, 1], got %v", c.LLM.Temperature)
	case c.LLM.MaxRetries < 0:
		return fmt.Errorf("config: llm.max_retries must not be negative, got %d", c.LLM.MaxRetries)
	case c.Runner.MaxLLMCalls <= 0:
		return fmt.Errorf("config: runner.max_llm_calls must be positive, got %d", c.Runner.MaxLLMCalls)
	case c.Runner.TokenBudget < 0:
		return fmt.Errorf("config: runner.token_budget must not be negative, got %d", c.Runner.TokenBudget)
	}
	return nil
}
