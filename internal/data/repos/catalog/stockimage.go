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

// StockImageRepo scopes every read by channel.
type StockImageRepo interface {
	CreateWithEmbedding(ctx context.Context, tx *gorm.DB, image *domain.StockImage, embedding []float32) (*domain.StockImage, error)
	CreateWithoutEmbedding(ctx context.Context, tx *gorm.DB, image *domain.StockImage) (*domain.StockImage, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.StockImage, error)
	RankBySimilarity(ctx context.Context, tx *gorm.DB, embedding []float32, filter domain.SearchFilter, limit int) ([]*domain.StockImage, error)
	ListFiltered(ctx context.Context, tx *gorm.DB, params domain.ListParams) ([]*domain.StockImage, int64, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type stockImageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStockImageRepo(db *gorm.DB, baseLog *logger.Logger) StockImageRepo {
	repoLog := baseLog.With("repo", "StockImageRepo")
	return &stockImageRepo{db: db, log: repoLog}
}

func (r *stockImageRepo) CreateWithEmbedding(ctx context.Context, tx *gorm.DB, image *domain.StockImage, embedding []float32) (*domain.StockImage, error) {
	if err := checkDimensions(embedding); err != nil {
		return nil, err
	}
	vec := pgvector.NewVector(embedding)
	row := *image
	row.Embedding = &vec
	return r.insert(ctx, tx, &row, "StockImageRepo.CreateWithEmbedding")
}

func (r *stockImageRepo) CreateWithoutEmbedding(ctx context.Context, tx *gorm.DB, image *domain.StockImage) (*domain.StockImage, error) {
	row := *image
	row.Embedding = nil
	return r.insert(ctx, tx, &row, "StockImageRepo.CreateWithoutEmbedding")
}

func (r *stockImageRepo) insert(ctx context.Context, tx *gorm.DB, row *domain.StockImage, op string) (out *domain.StockImage, err error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	ctx, span := startSpan(ctx, op, "stock_images")
	defer func() { endSpan(span, err) }()

	if row.ChannelID == "" || row.Name == "" || row.URL == "" {
		return nil, fmt.Errorf("stock image requires channel_id, name and url")
	}
	if row.Tags == nil {
		row.Tags = domain.StringArray{}
	}
	if err = transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *stockImageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.StockImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var image domain.StockImage
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

func (r *stockImageRepo) RankBySimilarity(ctx context.Context, tx *gorm.DB, embedding []float32, filter domain.SearchFilter, limit int) (out []*domain.StockImage, err error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	ctx, span := startSpan(ctx, "StockImageRepo.RankBySimilarity", "stock_images")
	defer func() { endSpan(span, err) }()

	if filter.ChannelID == "" {
		return nil, fmt.Errorf("%w: channel_id required", domain.ErrStoreQueryFailed)
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	if len(embedding) > 0 {
		if err = checkDimensions(embedding); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreQueryFailed, err)
		}
	}

	out = []*domain.StockImage{}
	err = transaction.WithContext(ctx).
		Model(&domain.StockImage{}).
		Where("channel_id = ?", filter.ChannelID).
		Where("embedding IS NOT NULL").
		Clauses(byDistance(embedding)).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreQueryFailed, err)
	}
	return out, nil
}

func (r *stockImageRepo) ListFiltered(ctx context.Context, tx *gorm.DB, params domain.ListParams) (items []*domain.StockImage, total int64, err error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	ctx, span := startSpan(ctx, "StockImageRepo.ListFiltered", "stock_images")
	defer func() { endSpan(span, err) }()

	if params.Filter.ChannelID == "" {
		return nil, 0, fmt.Errorf("%w: channel_id required", domain.ErrStoreQueryFailed)
	}
	params = params.Normalize(domain.ImageSortFields)
	return listPage[domain.StockImage](ctx, transaction, params, func(q *gorm.DB) *gorm.DB {
		return applyCommonFilters(q.Where("channel_id = ?", params.Filter.ChannelID), params.Filter)
	})
}

func (r *stockImageRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.StockImage{}).Error
}
