package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/stockmedia-backend/internal/pkg/httpx"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

type openAIProvider struct {
	log    *logger.Logger
	client *openai.Client
	name   string
	model  string
	retry  httpx.RetryPolicy
}

// NewOpenAIProvider serves both api.openai.com style endpoints and Azure OpenAI
// deployments (cfg.Provider == "azure").
func NewOpenAIProvider(log *logger.Logger, cfg Config, httpClient *http.Client) (Provider, error) {
	cfg = cfg.withDefaults()

	var clientCfg openai.ClientConfig
	switch cfg.Provider {
	case ProviderAzure:
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
	default:
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}

	p := &openAIProvider{
		log:    log.With("provider", cfg.Provider, "model", cfg.Model),
		client: openai.NewClientWithConfig(clientCfg),
		name:   cfg.Provider,
		model:  cfg.Model,
	}
	p.retry = httpx.RetryPolicy{
		MaxRetries:  cfg.MaxRetries,
		BaseBackoff: 500 * time.Millisecond,
		MaxBackoff:  5 * time.Second,
		OnRetry: func(attempt int, sleep time.Duration, err error) {
			p.log.Warn("embedding request retrying", "attempt", attempt, "sleep", sleep.String(), "error", err.Error())
		},
	}
	return p, nil
}

func (p *openAIProvider) Name() string { return p.name }

func (p *openAIProvider) Embed(ctx context.Context, text string) (RawEmbeddingResponse, error) {
	var resp openai.EmbeddingResponse
	err := httpx.Do(ctx, p.retry, func(ctx context.Context) error {
		var callErr error
		resp, callErr = p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(p.model),
		})
		return classifyOpenAIError(callErr)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, p.name, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: %s returned no data", ErrProviderUnavailable, p.name)
	}
	return FloatArray(resp.Data[0].Embedding), nil
}

type statusErr struct {
	status int
	err    error
}

func (e *statusErr) Error() string       { return e.err.Error() }
func (e *statusErr) Unwrap() error       { return e.err }
func (e *statusErr) HTTPStatusCode() int { return e.status }

func classifyOpenAIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &statusErr{status: apiErr.HTTPStatusCode, err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &statusErr{status: reqErr.HTTPStatusCode, err: err}
	}
	return err
}
