package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	catalogrepo "github.com/yungbote/stockmedia-backend/internal/data/repos/catalog"
	domain "github.com/yungbote/stockmedia-backend/internal/domain/catalog"
	pkgerrors "github.com/yungbote/stockmedia-backend/internal/pkg/errors"
	"github.com/yungbote/stockmedia-backend/internal/platform/embedding"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

type CreateStockImageInput struct {
	ChannelID   string
	Name        string
	Description *string
	URL         string
	Tags        []string
}

type SearchStockImagesInput struct {
	ChannelID string
	Query     string
	Limit     int
}

// StockImageService operates on exactly one channel per call.
type StockImageService interface {
	Create(ctx context.Context, in CreateStockImageInput) (*domain.StockImage, error)
	Search(ctx context.Context, in SearchStockImagesInput) ([]*domain.StockImage, error)
	FetchAll(ctx context.Context, params domain.ListParams) (*domain.Page[*domain.StockImage], error)
}

type stockImageService struct {
	log      *logger.Logger
	cfg      CatalogConfig
	repo     catalogrepo.StockImageRepo
	embedder embedding.Embedder
}

func NewStockImageService(log *logger.Logger, cfg CatalogConfig, repo catalogrepo.StockImageRepo, embedder embedding.Embedder) StockImageService {
	return &stockImageService{
		log:      log.With("service", "StockImageService"),
		cfg:      cfg,
		repo:     repo,
		embedder: embedder,
	}
}

func (s *stockImageService) Create(ctx context.Context, in CreateStockImageInput) (*domain.StockImage, error) {
	img := &domain.StockImage{
		ID:          uuid.New(),
		ChannelID:   in.ChannelID,
		Name:        in.Name,
		Description: cloneString(in.Description),
		URL:         in.URL,
		Tags:        domain.StringArray(append([]string{}, in.Tags...)),
	}
	if err := requireFields("channel_id", img.ChannelID, "name", img.Name, "url", img.URL); err != nil {
		return nil, err
	}

	log := s.log.WithContext(ctx).With("image_id", img.ID.String(), "channel_id", img.ChannelID)
	log.Info("Creating stock image", "name", img.Name)

	vec := s.embedder.Embed(ctx, embeddingText(img.Name, img.Description, img.Tags))
	return writeWithFallback(ctx, log, vec, recordWriter[domain.StockImage]{
		withEmbedding: func(ctx context.Context, vec []float32) (*domain.StockImage, error) {
			return s.repo.CreateWithEmbedding(ctx, nil, img, vec)
		},
		withoutEmbedding: func(ctx context.Context) (*domain.StockImage, error) {
			return s.repo.CreateWithoutEmbedding(ctx, nil, img)
		},
		byID: func(ctx context.Context) (*domain.StockImage, error) {
			return s.repo.GetByID(ctx, nil, img.ID)
		},
	})
}

func (s *stockImageService) Search(ctx context.Context, in SearchStockImagesInput) ([]*domain.StockImage, error) {
	channelID := exactOrEmpty(in.ChannelID)
	query := strings.TrimSpace(in.Query)
	if err := requireFields("channel_id", channelID, "query", query); err != nil {
		return nil, err
	}
	vec := s.embedder.Embed(ctx, query)
	if len(vec) == 0 {
		s.log.WithContext(ctx).Warn("Search embedding unavailable, ranking against zero vector", "channel_id", channelID)
	}
	out, err := s.repo.RankBySimilarity(ctx, nil, vec, domain.SearchFilter{ChannelID: channelID}, s.cfg.searchLimit(in.Limit))
	if err != nil {
		return nil, fmt.Errorf("search stock images: %w", err)
	}
	return out, nil
}

func (s *stockImageService) FetchAll(ctx context.Context, params domain.ListParams) (*domain.Page[*domain.StockImage], error) {
	params.Filter.ChannelID = exactOrEmpty(params.Filter.ChannelID)
	if params.Filter.ChannelID == "" {
		return nil, fmt.Errorf("%w: channel_id required", pkgerrors.ErrInvalidArgument)
	}
	params.Filter.Genre = ""
	params = params.Normalize(domain.ImageSortFields)
	items, total, err := s.repo.ListFiltered(ctx, nil, params)
	if err != nil {
		return nil, fmt.Errorf("fetch stock images: %w", err)
	}
	return pageOf(items, total, params), nil
}
