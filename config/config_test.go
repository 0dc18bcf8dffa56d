package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/artifact"
	"github.com/hupe1980/agentkit/artifact/s3"
	"github.com/hupe1980/agentkit/model/anthropic"
	"github.com/hupe1980/agentkit/model/ollama"
	"github.com/hupe1980/agentkit/model/openai"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
	assert.Equal(t, "qwen3:8b", cfg.Model)
	assert.Zero(t, cfg.Temperature)
}

func TestUnmarshal(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Unmarshal([]byte(`
model: gpt-oss
tool_timeout: 30s
agents:
  coder:
    model: qwen2.5-coder:14b
  searcher:
    temperature: 0.7
log:
  format: json
`)))

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gpt-oss", cfg.Model)
	assert.Equal(t, 30*time.Second, cfg.ToolTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)

	assert.Equal(t, "qwen2.5-coder:14b", cfg.For("coder").Model)
	assert.Equal(t, "gpt-oss", cfg.For("searcher").Model)
	assert.Equal(t, 0.7, cfg.For("searcher").Temperature)
	assert.Equal(t, "gpt-oss", cfg.For("unknown").Model)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{
		EnvProvider:        "anthropic",
		EnvModel:           "claude-3-5-haiku-latest",
		EnvOpenAIAPIKey:    "sk-openai",
		EnvAnthropicAPIKey: "sk-ant",
		EnvTemperature:     "0.2",
	})))

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.Model)
	assert.Equal(t, "sk-ant", cfg.APIKey)
	assert.Equal(t, 0.2, cfg.Temperature)

	err := cfg.ApplyEnv(env(map[string]string{EnvTemperature: "hot"}))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"provider", func(c *Config) { c.Provider = "gemini" }},
		{"model", func(c *Config) { c.Model = "" }},
		{"base url", func(c *Config) { c.BaseURL = "not a url" }},
		{"temperature", func(c *Config) { c.Temperature = 3 }},
		{"log level", func(c *Config) { c.Log.Level = "trace" }},
		{"artifact backend", func(c *Config) { c.Artifacts.Backend = "gcs" }},
		{"s3 without bucket", func(c *Config) {
			c.Artifacts.Backend = ArtifactS3
			c.Artifacts.S3.Region = "eu-central-1"
		}},
		{"agent temperature", func(c *Config) {
			hot := 5.0
			c.Agents = map[string]AgentConfig{"coder": {Temperature: &hot}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestArtifacts(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Unmarshal([]byte(`
artifacts:
  backend: s3
  s3:
    bucket: exams
    prefix: class-1
    endpoint: http://localhost:9000
    use_path_style: true
`)))
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{
		EnvAWSRegion:       "eu-central-1",
		EnvAWSAccessKeyID:  "AKID",
		EnvAWSSecretKey:    "secret",
		EnvArtifactBackend: "",
	})))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ArtifactS3, cfg.Artifacts.Backend)
	assert.Equal(t, S3Config{
		Bucket:          "exams",
		Prefix:          "class-1",
		Region:          "eu-central-1",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
		AccessKeyID:     "AKID",
		SecretAccessKey: "secret",
	}, cfg.Artifacts.S3)

	// an incomplete S3 section is ignored by other backends
	cfg.Artifacts.Backend = ArtifactFS
	cfg.Artifacts.S3.Bucket = ""
	require.NoError(t, cfg.Validate())
}

func TestNewArtifactStore(t *testing.T) {
	cfg := Default()
	cfg.WorkDir = t.TempDir()

	store, err := NewArtifactStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &artifact.FSStore{}, store)

	cfg.Artifacts.Backend = ArtifactMemory
	store, err = NewArtifactStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &artifact.InMemoryStore{}, store)

	cfg.Artifacts.Backend = ArtifactS3
	cfg.Artifacts.S3 = S3Config{Bucket: "exams", Region: "us-east-1", AccessKeyID: "AKID", SecretAccessKey: "secret"}
	store, err = NewArtifactStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &s3.Store{}, store)

	cfg.Artifacts.Backend = "gcs"
	_, err = NewArtifactStore(cfg)
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: ollama\nmodel: llama3.1:8b\n"), 0o600))

	t.Setenv(EnvModel, "qwen3:14b")
	t.Setenv(EnvProvider, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "qwen3:14b", cfg.Model)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewModel(t *testing.T) {
	cfg := Default()

	m, err := NewModel(cfg)
	require.NoError(t, err)
	assert.IsType(t, &openai.Model{}, m)
	assert.Equal(t, "qwen3:8b", m.Info().Name)

	cfg.Provider = ProviderOllama
	m, err = NewModel(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ollama.Model{}, m)

	cfg.Provider = ProviderAnthropic
	cfg.Model = "claude-3-5-haiku-latest"
	m, err = NewModel(cfg)
	require.NoError(t, err)
	assert.IsType(t, &anthropic.Model{}, m)

	cfg.Provider = "gemini"
	_, err = NewModel(cfg)
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(Default())
	require.NoError(t, err)
	assert.NotNil(t, l)

	cfg := Default()
	cfg.Log.Level = "loud"
	_, err = NewLogger(cfg)
	require.Error(t, err)
}
