package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

// Provider is a single upstream embedding API.
type Provider interface {
	Name() string
	Embed(ctx context.Context, text string) (RawEmbeddingResponse, error)
}

// Embedder turns text into a vector of the configured width. A nil/empty
// result means the provider could not produce one; it is never an error.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
	Dimensions() int
}

type Adapter struct {
	log      *logger.Logger
	provider Provider
	dims     int
	timeout  time.Duration
	cache    VectorCache
}

type AdapterOption func(*Adapter)

func WithCache(c VectorCache) AdapterOption {
	return func(a *Adapter) { a.cache = c }
}

func NewAdapter(log *logger.Logger, provider Provider, dims int, timeout time.Duration, opts ...AdapterOption) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	a := &Adapter{
		log:      log.With("component", "EmbeddingAdapter", "provider", provider.Name()),
		provider: provider,
		dims:     dims,
		timeout:  timeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// New builds the provider named by cfg and wraps it in an Adapter.
func New(ctx context.Context, log *logger.Logger, cfg Config, httpClient *http.Client, opts ...AdapterOption) (*Adapter, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case ProviderGemini:
		p, err = NewGeminiProvider(ctx, log, cfg, httpClient)
	default:
		p, err = NewOpenAIProvider(log, cfg, httpClient)
	}
	if err != nil {
		return nil, err
	}
	return NewAdapter(log, p, cfg.Dimensions, cfg.Timeout, opts...), nil
}

func (a *Adapter) Dimensions() int { return a.dims }

func (a *Adapter) Embed(ctx context.Context, text string) []float32 {
	ctx, span := otel.Tracer("stockmedia/embedding").Start(ctx, "embedding.Embed")
	defer span.End()
	span.SetAttributes(attribute.String("embedding.provider", a.provider.Name()), attribute.Int("embedding.dimensions", a.dims))

	if a.cache != nil {
		if vec, ok := a.cache.Get(ctx, text); ok && len(vec) == a.dims {
			span.SetAttributes(attribute.Bool("embedding.cache_hit", true))
			return vec
		}
	}

	vec, err := a.embed(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embedding failed")
		a.log.WithContext(ctx).Error("embedding failed; continuing without vector", "error", err)
		return nil
	}

	if a.cache != nil {
		a.cache.Set(ctx, text, vec)
	}
	return vec
}

func (a *Adapter) embed(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.provider.Embed(callCtx, text)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: nil response", ErrProviderUnavailable)
	}
	floats, err := raw.Floats()
	if err != nil {
		return nil, err
	}
	if len(floats) != a.dims {
		a.log.WithContext(ctx).Debug("normalizing embedding length", "raw_length", len(floats), "dimensions", a.dims)
	}
	return Normalize(floats, a.dims), nil
}
