// Package config loads transhub settings from flags, TRANSHUB_* environment
// variables, an optional .env file and an optional .transhub.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/valpere/transhub/internal/translator"
)

const (
	VariantLite = "lite"
	VariantFull = "full"

	BackendHub    = "hub"
	BackendGoogle = "google"
	BackendOllama = "ollama"
	BackendOpenAI = "openai"

	EnvPrefix = "TRANSHUB"
)

type GoogleConfig struct {
	Credentials string `mapstructure:"credentials"`
}

type OllamaConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

type OpenAIConfig struct {
	Key     string `mapstructure:"key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type Config struct {
	Variant           string        `mapstructure:"variant"`
	Backend           string        `mapstructure:"backend"`
	HubURL            string        `mapstructure:"hub_url"`
	InferenceURL      string        `mapstructure:"inference_url"`
	HFToken           string        `mapstructure:"hf_token"`
	MultilingualModel string        `mapstructure:"multilingual_model"`
	Google            GoogleConfig  `mapstructure:"google"`
	Ollama            OllamaConfig  `mapstructure:"ollama"`
	OpenAI            OpenAIConfig  `mapstructure:"openai"`
	Memory            string        `mapstructure:"memory"`
	Validate          bool          `mapstructure:"validate"`
	MaxChunkChars     int           `mapstructure:"max_chunk_chars"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Listen            string        `mapstructure:"listen"`
}

// Defaults registers every key, which also makes AutomaticEnv see them
// during Unmarshal.
func Defaults(v *viper.Viper) {
	v.SetDefault("variant", VariantFull)
	v.SetDefault("backend", BackendHub)
	v.SetDefault("hub_url", translator.DefaultHubURL)
	v.SetDefault("inference_url", translator.DefaultInferenceURL)
	v.SetDefault("hf_token", "")
	v.SetDefault("multilingual_model", translator.DefaultMultilingualModel)
	v.SetDefault("google.credentials", "")
	v.SetDefault("ollama.url", translator.DefaultOllamaURL)
	v.SetDefault("ollama.model", translator.DefaultOllamaModel)
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", translator.DefaultOpenAIModel)
	v.SetDefault("memory", "")
	v.SetDefault("validate", false)
	v.SetDefault("max_chunk_chars", 900)
	v.SetDefault("timeout", 2*time.Minute)
	v.SetDefault("listen", ":8080")
}

// New builds a viper instance. cfgFile overrides the search for
// .transhub.yaml in the home and working directories. A missing .env or
// config file is not an error.
func New(cfgFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	Defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the conventional names of the providers' own tools
	_ = v.BindEnv("hf_token", EnvPrefix+"_HF_TOKEN", "HF_TOKEN")
	_ = v.BindEnv("google.credentials", EnvPrefix+"_GOOGLE_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS")
	_ = v.BindEnv("openai.key", EnvPrefix+"_OPENAI_KEY", "OPENAI_API_KEY")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
		return v, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(".transhub")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Variant = strings.ToLower(strings.TrimSpace(cfg.Variant))
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Check() error {
	switch c.Variant {
	case VariantLite, VariantFull:
	default:
		return fmt.Errorf("invalid variant %q (want %s or %s)", c.Variant, VariantLite, VariantFull)
	}

	switch c.Backend {
	case BackendHub, BackendGoogle, BackendOllama, BackendOpenAI:
	default:
		return fmt.Errorf("invalid backend %q (want hub, google, ollama or openai)", c.Backend)
	}

	if c.MaxChunkChars < 0 {
		return fmt.Errorf("max_chunk_chars must not be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
