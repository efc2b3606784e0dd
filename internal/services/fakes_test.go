package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	domain "github.com/yungbote/stockmedia-backend/internal/domain/catalog"
	"github.com/yungbote/stockmedia-backend/internal/platform/embedding"
)

type fakeProvider struct {
	vec []float32
	err error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Embed(_ context.Context, _ string) (embedding.RawEmbeddingResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return embedding.FloatArray(p.vec), nil
}

type recordingEmbedder struct {
	vec   []float32
	texts []string
}

func (e *recordingEmbedder) Embed(_ context.Context, text string) []float32 {
	e.texts = append(e.texts, text)
	return e.vec
}

func (e *recordingEmbedder) Dimensions() int { return domain.EmbeddingDimensions }

// fakeClipRepo keeps rows in insertion order.
type fakeClipRepo struct {
	mu   sync.Mutex
	rows []*domain.StockClip

	failWithEmbedding    error
	failWithoutEmbedding error
	// commitThenFail stores the row but still reports failWithEmbedding.
	commitThenFail bool

	withCalls, withoutCalls int
	rankVec                 []float32
	rankFilter              domain.SearchFilter
	rankLimit               int
	listParams              domain.ListParams
}

func (r *fakeClipRepo) store(c *domain.StockClip) (*domain.StockClip, error) {
	for _, existing := range r.rows {
		if existing.ID == c.ID {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	row := *c
	r.rows = append(r.rows, &row)
	return &row, nil
}

func (r *fakeClipRepo) CreateWithEmbedding(_ context.Context, _ *gorm.DB, c *domain.StockClip, vec []float32) (*domain.StockClip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.withCalls++
	if len(vec) != domain.EmbeddingDimensions {
		return nil, domain.ErrDimensionMismatch
	}
	if r.failWithEmbedding != nil {
		if r.commitThenFail {
			_, _ = r.store(withEmbedding(c, vec))
		}
		return nil, r.failWithEmbedding
	}
	return r.store(withEmbedding(c, vec))
}

func withEmbedding(c *domain.StockClip, vec []float32) *domain.StockClip {
	row := *c
	v := pgvector.NewVector(vec)
	row.Embedding = &v
	return &row
}

func (r *fakeClipRepo) CreateWithoutEmbedding(_ context.Context, _ *gorm.DB, c *domain.StockClip) (*domain.StockClip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.withoutCalls++
	if r.failWithoutEmbedding != nil {
		return nil, r.failWithoutEmbedding
	}
	row := *c
	row.Embedding = nil
	return r.store(&row)
}

func (r *fakeClipRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*domain.StockClip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeClipRepo) RankBySimilarity(_ context.Context, _ *gorm.DB, vec []float32, f domain.SearchFilter, limit int) ([]*domain.StockClip, error) {
	r.rankVec, r.rankFilter, r.rankLimit = vec, f, limit
	return []*domain.StockClip{}, nil
}

func (r *fakeClipRepo) ListFiltered(_ context.Context, _ *gorm.DB, p domain.ListParams) ([]*domain.StockClip, int64, error) {
	r.listParams = p
	total := int64(len(r.rows))
	from := min(p.Offset(), len(r.rows))
	to := min(from+p.Limit, len(r.rows))
	return r.rows[from:to], total, nil
}

func (r *fakeClipRepo) SoftDeleteByIDs(context.Context, *gorm.DB, []uuid.UUID) error {
	return errors.New("not implemented")
}

type fakeImageRepo struct {
	rows       []*domain.StockImage
	rankFilter domain.SearchFilter
	listParams domain.ListParams
	listErr    error
}

func (r *fakeImageRepo) CreateWithEmbedding(_ context.Context, _ *gorm.DB, img *domain.StockImage, vec []float32) (*domain.StockImage, error) {
	row := *img
	v := pgvector.NewVector(vec)
	row.Embedding = &v
	r.rows = append(r.rows, &row)
	return &row, nil
}

func (r *fakeImageRepo) CreateWithoutEmbedding(_ context.Context, _ *gorm.DB, img *domain.StockImage) (*domain.StockImage, error) {
	row := *img
	r.rows = append(r.rows, &row)
	return &row, nil
}

func (r *fakeImageRepo) GetByID(context.Context, *gorm.DB, uuid.UUID) (*domain.StockImage, error) {
	return nil, nil
}

func (r *fakeImageRepo) RankBySimilarity(_ context.Context, _ *gorm.DB, _ []float32, f domain.SearchFilter, _ int) ([]*domain.StockImage, error) {
	r.rankFilter = f
	return []*domain.StockImage{}, nil
}

func (r *fakeImageRepo) ListFiltered(_ context.Context, _ *gorm.DB, p domain.ListParams) ([]*domain.StockImage, int64, error) {
	r.listParams = p
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	return nil, 0, nil
}

func (r *fakeImageRepo) SoftDeleteByIDs(context.Context, *gorm.DB, []uuid.UUID) error { return nil }
