// Package config loads the runtime configuration: provider, endpoint,
// model names and logging. Values come from an optional YAML file and are
// overridden by environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Artifact backends.
const (
	ArtifactFS     = "fs"
	ArtifactMemory = "memory"
	ArtifactS3     = "s3"
)

// Providers.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// Defaults target a local Ollama server through its OpenAI-compatible API.
const (
	DefaultProvider = ProviderOpenAI
	DefaultBaseURL  = "http://localhost:11434/v1"
	DefaultModel    = "qwen3:8b"
)

// Environment variables read by ApplyEnv.
const (
	EnvProvider        = "AGENTKIT_PROVIDER"
	EnvBaseURL         = "AGENTKIT_BASE_URL"
	EnvModel           = "AGENTKIT_MODEL"
	EnvTemperature     = "AGENTKIT_TEMPERATURE"
	EnvLogLevel        = "AGENTKIT_LOG_LEVEL"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"

	EnvArtifactBackend = "AGENTKIT_ARTIFACT_BACKEND"
	EnvS3Bucket        = "AGENTKIT_S3_BUCKET"
	EnvS3Endpoint      = "AGENTKIT_S3_ENDPOINT"
	EnvAWSRegion       = "AWS_REGION"
	EnvAWSAccessKeyID  = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretKey    = "AWS_SECRET_ACCESS_KEY"
	EnvAWSSessionToken = "AWS_SESSION_TOKEN"
)

// Config is the root configuration.
type Config struct {
	Provider    string  `yaml:"provider" validate:"required,oneof=openai ollama anthropic"`
	BaseURL     string  `yaml:"base_url" validate:"omitempty,url"`
	Model       string  `yaml:"model" validate:"required"`
	APIKey      string  `yaml:"api_key"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int64   `yaml:"max_tokens" validate:"gte=0"`

	Retries       int           `yaml:"retries" validate:"gte=0"`
	ToolTimeout   time.Duration `yaml:"tool_timeout" validate:"gte=0"`
	MaxModelCalls int           `yaml:"max_model_calls" validate:"gte=0"`

	// Agents override the model per agent name, e.g. a coder model.
	Agents map[string]AgentConfig `yaml:"agents" validate:"dive"`

	// WorkDir holds text artifacts such as answer sheets.
	WorkDir string `yaml:"work_dir"`

	Artifacts ArtifactConfig `yaml:"artifacts"`

	Log LogConfig `yaml:"log"`
}

// AgentConfig overrides model settings for one agent.
type AgentConfig struct {
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature" validate:"omitempty,gte=0,lte=2"`
}

// ArtifactConfig selects where text artifacts live. The fs backend is
// rooted at WorkDir; with s3 WorkDir is unused and Prefix scopes the keys.
type ArtifactConfig struct {
	// Backend is fs (the default when empty), memory or s3.
	Backend string `yaml:"backend" validate:"omitempty,oneof=fs memory s3"`

	// S3 is validated only for the s3 backend.
	S3 S3Config `yaml:"s3" validate:"-"`
}

// S3Config addresses a bucket on AWS or an S3-compatible server.
type S3Config struct {
	Bucket       string `yaml:"bucket" validate:"required"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region" validate:"required"`
	Endpoint     string `yaml:"endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `yaml:"use_path_style"`

	// Static credentials; usually taken from the AWS_* environment.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:    DefaultProvider,
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Retries:     1,
		ToolTimeout: 15 * time.Second,
		Log:         LogConfig{Level: "info", Format: "text"},
		Artifacts:   ArtifactConfig{Backend: ArtifactFS},
	}
}

// Load reads path (skipped when empty), applies the process environment and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.Unmarshal(data); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Unmarshal merges YAML data into c. Keys absent from data keep their value.
func (c *Config) Unmarshal(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides c from environment variables. The API key variable is
// chosen by provider; OPENAI_API_KEY also serves the ollama provider's
// OpenAI-compatible endpoint.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvProvider); ok && v != "" {
		c.Provider = v
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.Model = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvTemperature); ok && v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTemperature, err)
		}
		c.Temperature = t
	}

	c.applyArtifactEnv(lookup)

	keyVar := EnvOpenAIAPIKey
	if c.Provider == ProviderAnthropic {
		keyVar = EnvAnthropicAPIKey
	}
	if v, ok := lookup(keyVar); ok && v != "" {
		c.APIKey = v
	}

	return nil
}

func (c *Config) applyArtifactEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.Artifacts.Backend, EnvArtifactBackend)
	set(&c.Artifacts.S3.Bucket, EnvS3Bucket)
	set(&c.Artifacts.S3.Endpoint, EnvS3Endpoint)
	set(&c.Artifacts.S3.Region, EnvAWSRegion)
	set(&c.Artifacts.S3.AccessKeyID, EnvAWSAccessKeyID)
	set(&c.Artifacts.S3.SecretAccessKey, EnvAWSSecretKey)
	set(&c.Artifacts.S3.SessionToken, EnvAWSSessionToken)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return validationError(err)
	}

	if c.Artifacts.Backend == ArtifactS3 {
		if err := v.Struct(c.Artifacts.S3); err != nil {
			return validationError(err)
		}
	}

	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}

	return fmt.Errorf("invalid config: %w", err)
}

// For returns the configuration for the named agent: the root settings with
// the agent's overrides applied.
func (c Config) For(agentName string) Config {
	ac, ok := c.Agents[agentName]
	if !ok {
		return c
	}

	if ac.Model != "" {
		c.Model = ac.Model
	}
	if ac.Temperature != nil {
		c.Temperature = *ac.Temperature
	}

	return c
}
