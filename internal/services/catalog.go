package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	domain "github.com/yungbote/stockmedia-backend/internal/domain/catalog"
	pkgerrors "github.com/yungbote/stockmedia-backend/internal/pkg/errors"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

// CatalogConfig is shared by the clip and image services.
type CatalogConfig struct {
	// SearchLimit is used when a search request carries no positive limit.
	SearchLimit int
}

func (c CatalogConfig) searchLimit(requested int) int {
	if requested > 0 {
		return requested
	}
	if c.SearchLimit > 0 {
		return c.SearchLimit
	}
	return domain.DefaultSearchLimit
}

// embeddingText is the text a record is embedded from: name, description
// (empty when absent), any kind-specific attributes, then tags.
func embeddingText(name string, description *string, tags []string, extra ...string) string {
	desc := ""
	if description != nil {
		desc = *description
	}
	parts := make([]string, 0, 2+len(extra)+len(tags))
	parts = append(parts, name, desc)
	parts = append(parts, extra...)
	parts = append(parts, tags...)
	return strings.Join(parts, " ")
}

// Records are stored exactly as submitted; trimming only decides presence.
func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// exactOrEmpty keeps a filter value verbatim unless it is blank.
func exactOrEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

func requireFields(kv ...string) error {
	var missing []string
	for i := 0; i+1 < len(kv); i += 2 {
		if strings.TrimSpace(kv[i+1]) == "" {
			missing = append(missing, kv[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", pkgerrors.ErrInvalidArgument, strings.Join(missing, ", "))
	}
	return nil
}

// recordWriter is the insert surface the create path needs, bound to one
// record whose id is fixed before the first attempt.
type recordWriter[T any] struct {
	withEmbedding    func(ctx context.Context, vec []float32) (*T, error)
	withoutEmbedding func(ctx context.Context) (*T, error)
	byID             func(ctx context.Context) (*T, error)
}

// writeWithFallback stores exactly one row. A non-empty vector is tried
// first; any failure there falls back once to an insert without embedding,
// whose error is the only one surfaced. If the fallback hits the record's
// own primary key, the primary attempt committed and that row is returned.
func writeWithFallback[T any](ctx context.Context, log *logger.Logger, vec []float32, w recordWriter[T]) (*T, error) {
	if len(vec) > 0 {
		rec, err := w.withEmbedding(ctx, vec)
		if err == nil {
			return rec, nil
		}
		log.Warn("Insert with embedding failed, retrying without embedding",
			"error", fmt.Errorf("%w: %w", domain.ErrPrimaryWriteFailed, err))
	} else {
		log.Warn("No embedding available, inserting without embedding")
	}

	rec, err := w.withoutEmbedding(ctx)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, gerr := w.byID(ctx)
		if gerr == nil && existing != nil {
			return existing, nil
		}
	}
	log.Error("Insert without embedding failed", "error", err)
	return nil, fmt.Errorf("%w: %w", domain.ErrFallbackWriteFailed, err)
}

func pageOf[T any](items []*T, total int64, p domain.ListParams) *domain.Page[*T] {
	if items == nil {
		items = []*T{}
	}
	return &domain.Page[*T]{Items: items, Meta: domain.NewPageMeta(total, p.Page, p.Limit)}
}
