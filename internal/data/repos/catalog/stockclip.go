package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	domain "github.com/yungbote/stockmedia-backend/internal/domain/catalog"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

type StockClipRepo interface {
	CreateWithEmbedding(ctx context.Context, tx *gorm.DB, clip *domain.StockClip, embedding []float32) (*domain.StockClip, error)
	CreateWithoutEmbedding(ctx context.Context, tx *gorm.DB, clip *domain.StockClip) (*domain.StockClip, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.StockClip, error)
	RankBySimilarity(ctx context.Context, tx *gorm.DB, embedding []float32, filter domain.SearchFilter, limit int) ([]*domain.StockClip, error)
	ListFiltered(ctx context.Context, tx *gorm.DB, params domain.ListParams) ([]*domain.StockClip, int64, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type stockClipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStockClipRepo(db *gorm.DB, baseLog *logger.Logger) StockClipRepo {
	repoLog := baseLog.With("repo", "StockClipRepo")
	return &stockClipRepo{db: db, log: repoLog}
}

func (r *stockClipRepo) CreateWithEmbedding(ctx context.Context, tx *gorm.DB, clip *domain.StockClip, embedding []float32) (*domain.StockClip, error) {
	if err := checkDimensions(embedding); err != nil {
		return nil, err
	}
	vec := pgvector.NewVector(embedding)
	row := *clip
	row.Embedding = &vec
	return r.insert(ctx, tx, &row, "StockClipRepo.CreateWithEmbedding")
}

func (r *stockClipRepo) CreateWithoutEmbedding(ctx context.Context, tx *gorm.DB, clip *domain.StockClip) (*domain.StockClip, error) {
	row := *clip
	row.Embedding = nil
	return r.insert(ctx, tx, &row, "StockClipRepo.CreateWithoutEmbedding")
}

func (r *stockClipRepo) insert(ctx context.Context, tx *gorm.DB, row *domain.StockClip, op string) (out *domain.StockClip, err error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	ctx, span := startSpan(ctx, op, "stock_clips")
	defer func() { endSpan(span, err) }()

	if row.Name == "" || row.URL == "" || row.Genre == "" || row.Duration == "" {
		return nil, fmt.Errorf("stock clip requires name, url, genre and duration")
	}
	if row.Tags == nil {
		row.Tags = domain.StringArray{}
	}
	if err = transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *stockClipRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.StockClip, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var clip domain.StockClip
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&clip).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &clip, nil
}

func (r *stockClipRepo) RankBySimilarity(ctx context.Context, tx *gorm.DB, embedding []float32, filter domain.SearchFilter, limit int) (out []*domain.StockClip, err error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	ctx, span := startSpan(ctx, "StockClipRepo.RankBySimilarity", "stock_clips")
	defer func() { endSpan(span, err) }()

	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	if len(embedding) > 0 {
		if err = checkDimensions(embedding); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreQueryFailed, err)
		}
	}

	q := transaction.WithContext(ctx).Model(&domain.StockClip{}).Where("embedding IS NOT NULL")
	if filter.Genre != "" {
		q = q.Where("genre = ?", filter.Genre)
	}

	out = []*domain.StockClip{}
	if err = q.Clauses(byDistance(embedding)).Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreQueryFailed, err)
	}
	return out, nil
}

func (r *stockClipRepo) ListFiltered(ctx context.Context, tx *gorm.DB, params domain.ListParams) (items []*domain.StockClip, total int64, err error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	ctx, span := startSpan(ctx, "StockClipRepo.ListFiltered", "stock_clips")
	defer func() { endSpan(span, err) }()

	params = params.Normalize(domain.ClipSortFields)
	return listPage[domain.StockClip](ctx, transaction, params, func(q *gorm.DB) *gorm.DB {
		q = applyCommonFilters(q, params.Filter)
		if params.Filter.Genre != "" {
			q = q.Where("genre = ?", params.Filter.Genre)
		}
		return q
	})
}

func (r *stockClipRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.StockClip{}).Error
}
