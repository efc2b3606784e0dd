package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/stockmedia-backend/internal/domain/catalog"
)

var tracer = otel.Tracer("stockmedia/repos/catalog")

func startSpan(ctx context.Context, name, table string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("db.system", "postgresql"), attribute.String("db.sql.table", table))
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func checkDimensions(vec []float32) error {
	if len(vec) != domain.EmbeddingDimensions {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(vec), domain.EmbeddingDimensions)
	}
	return nil
}

// queryVector binds vec as a pgvector parameter. An empty vec ranks against
// the zero vector.
func queryVector(vec []float32) pgvector.Vector {
	if len(vec) == 0 {
		return pgvector.NewVector(make([]float32, domain.EmbeddingDimensions))
	}
	return pgvector.NewVector(vec)
}

func byDistance(vec []float32) clause.OrderBy {
	return clause.OrderBy{Expression: clause.Expr{
		SQL:                "embedding <-> ? ASC, id ASC",
		Vars:               []interface{}{queryVector(vec)},
		WithoutParentheses: true,
	}}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// applyCommonFilters adds the search and tag filters shared by every kind.
func applyCommonFilters(q *gorm.DB, f domain.ListFilter) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		p := containsPattern(s)
		q = q.Where("(name ILIKE ? OR description ILIKE ?)", p, p)
	}
	if tags := cleanTags(f.Tags); len(tags) > 0 {
		q = q.Where("tags && ?", domain.StringArray(tags))
	}
	return q
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// orderFor returns a deterministic ORDER BY for an allow-listed column.
func orderFor(p domain.ListParams) clause.OrderBy {
	desc := p.SortOrder != domain.SortAsc
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: p.SortBy}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}

var snapshotRead = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// listPage counts and fetches one page inside a single read-only
// repeatable-read transaction.
func listPage[T any](ctx context.Context, db *gorm.DB, p domain.ListParams, filtered func(*gorm.DB) *gorm.DB) ([]*T, int64, error) {
	var (
		items []*T
		total int64
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := filtered(tx.Model(new(T))).Count(&total).Error; err != nil {
			return err
		}
		if total == 0 {
			return nil
		}
		return filtered(tx.Model(new(T))).
			Clauses(orderFor(p)).
			Offset(p.Offset()).
			Limit(p.Limit).
			Find(&items).Error
	}, snapshotRead)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrStoreQueryFailed, err)
	}
	if items == nil {
		items = []*T{}
	}
	return items, total, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
