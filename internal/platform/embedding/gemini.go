package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/stockmedia-backend/internal/pkg/httpx"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

const geminiTaskType = "SEMANTIC_SIMILARITY"

type geminiProvider struct {
	log    *logger.Logger
	client *genai.Client
	model  string
	dims   int32
	retry  httpx.RetryPolicy
}

func NewGeminiProvider(ctx context.Context, log *logger.Logger, cfg Config, httpClient *http.Client) (Provider, error) {
	cfg = cfg.withDefaults()
	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("gemini embeddings require GOOGLE_API_KEY")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GoogleAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	p := &geminiProvider{
		log:    log.With("provider", ProviderGemini, "model", cfg.Model),
		client: client,
		model:  cfg.Model,
		dims:   int32(cfg.Dimensions),
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

func (p *geminiProvider) Name() string { return ProviderGemini }

func (p *geminiProvider) Embed(ctx context.Context, text string) (RawEmbeddingResponse, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	cfg := &genai.EmbedContentConfig{TaskType: geminiTaskType}
	if p.dims > 0 {
		dims := p.dims
		cfg.OutputDimensionality = &dims
	}

	var resp *genai.EmbedContentResponse
	err := httpx.Do(ctx, p.retry, func(ctx context.Context) error {
		var callErr error
		resp, callErr = p.client.Models.EmbedContent(ctx, p.model, contents, cfg)
		var apiErr genai.APIError
		if errors.As(callErr, &apiErr) {
			return &statusErr{status: apiErr.Code, err: callErr}
		}
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", ErrProviderUnavailable, err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("%w: gemini returned no embeddings", ErrProviderUnavailable)
	}

	out := make(ValuesObjects, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		if e == nil {
			continue
		}
		out = append(out, ValuesObject{Values: e.Values})
	}
	return out, nil
}
