package config

import (
	"context"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/agentkit/artifact"
	"github.com/hupe1980/agentkit/artifact/s3"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/model/anthropic"
	"github.com/hupe1980/agentkit/model/ollama"
	"github.com/hupe1980/agentkit/model/openai"
)

// NewModel builds the provider adapter described by cfg.
func NewModel(cfg Config) (model.Model, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.Model = cfg.Model
			o.Temperature = cfg.Temperature
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
			if cfg.APIKey != "" {
				o.APIKey = cfg.APIKey
			}
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = cfg.MaxTokens
			}
		}), nil
	case ProviderOllama:
		return ollama.NewModel(func(o *ollama.Options) {
			o.Model = cfg.Model
			o.Temperature = cfg.Temperature
			if cfg.BaseURL != "" {
				// the native API lives at the server root
				o.Host = strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/v1")
			}
			if cfg.MaxTokens > 0 {
				o.NumPredict = int(cfg.MaxTokens)
			}
		})
	case ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.Model)
			o.Temperature = cfg.Temperature
			o.APIKey = cfg.APIKey
			if cfg.BaseURL != "" && cfg.BaseURL != DefaultBaseURL {
				o.BaseURL = cfg.BaseURL
			}
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// NewModelFor builds the model of the named agent.
func NewModelFor(cfg Config, agentName string) (model.Model, error) {
	return NewModel(cfg.For(agentName))
}

// NewLogger builds the logger described by cfg.Log.
func NewLogger(cfg Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewSlogLogger(level, cfg.Log.Format, false), nil
}

// NewArtifactStore builds the artifact backend described by cfg.Artifacts.
func NewArtifactStore(cfg Config) (artifact.Store, error) {
	switch cfg.Artifacts.Backend {
	case "", ArtifactFS:
		return artifact.NewFSStore(cfg.WorkDir), nil
	case ArtifactMemory:
		return artifact.NewInMemoryStore(), nil
	case ArtifactS3:
		sc := cfg.Artifacts.S3
		return s3.New(newS3Client(sc), sc.Bucket, s3.WithPrefix(sc.Prefix)), nil
	default:
		return nil, fmt.Errorf("unknown artifact backend: %s", cfg.Artifacts.Backend)
	}
}

func newS3Client(sc S3Config) *awss3.Client {
	return awss3.New(awss3.Options{
		Region:       sc.Region,
		UsePathStyle: sc.UsePathStyle,
		BaseEndpoint: endpoint(sc.Endpoint),
		Credentials:  staticCredentials(sc),
	})
}

func endpoint(url string) *string {
	if url == "" {
		return nil
	}
	return aws.String(url)
}

// staticCredentials returns nil without an access key, leaving requests
// unsigned unless the client is given credentials another way.
func staticCredentials(sc S3Config) aws.CredentialsProvider {
	if sc.AccessKeyID == "" {
		return nil
	}
	return aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
			SessionToken:    sc.SessionToken,
			Source:          "agentkit config",
		}, nil
	}))
}
