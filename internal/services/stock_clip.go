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

type CreateStockClipInput struct {
	Name        string
	Description *string
	URL         string
	Genre       string
	Duration    string
	Tags        []string
}

type SearchStockClipsInput struct {
	Query string
	Limit int
	Genre string
}

type StockClipService interface {
	Create(ctx context.Context, in CreateStockClipInput) (*domain.StockClip, error)
	Search(ctx context.Context, in SearchStockClipsInput) ([]*domain.StockClip, error)
	FetchAll(ctx context.Context, params domain.ListParams) (*domain.Page[*domain.StockClip], error)
}

type stockClipService struct {
	log      *logger.Logger
	cfg      CatalogConfig
	repo     catalogrepo.StockClipRepo
	embedder embedding.Embedder
}

func NewStockClipService(log *logger.Logger, cfg CatalogConfig, repo catalogrepo.StockClipRepo, embedder embedding.Embedder) StockClipService {
	return &stockClipService{
		log:      log.With("service", "StockClipService"),
		cfg:      cfg,
		repo:     repo,
		embedder: embedder,
	}
}

func (s *stockClipService) Create(ctx context.Context, in CreateStockClipInput) (*domain.StockClip, error) {
	clip := &domain.StockClip{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: cloneString(in.Description),
		URL:         in.URL,
		Genre:       in.Genre,
		Duration:    in.Duration,
		Tags:        domain.StringArray(append([]string{}, in.Tags...)),
	}
	if err := requireFields("name", clip.Name, "url", clip.URL, "genre", clip.Genre, "duration", clip.Duration); err != nil {
		return nil, err
	}

	log := s.log.WithContext(ctx).With("clip_id", clip.ID.String())
	log.Info("Creating stock clip", "name", clip.Name, "genre", clip.Genre)

	vec := s.embedder.Embed(ctx, embeddingText(clip.Name, clip.Description, clip.Tags, clip.Genre))
	return writeWithFallback(ctx, log, vec, recordWriter[domain.StockClip]{
		withEmbedding: func(ctx context.Context, vec []float32) (*domain.StockClip, error) {
			return s.repo.CreateWithEmbedding(ctx, nil, clip, vec)
		},
		withoutEmbedding: func(ctx context.Context) (*domain.StockClip, error) {
			return s.repo.CreateWithoutEmbedding(ctx, nil, clip)
		},
		byID: func(ctx context.Context) (*domain.StockClip, error) {
			return s.repo.GetByID(ctx, nil, clip.ID)
		},
	})
}

func (s *stockClipService) Search(ctx context.Context, in SearchStockClipsInput) ([]*domain.StockClip, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query required", pkgerrors.ErrInvalidArgument)
	}
	vec := s.embedder.Embed(ctx, query)
	if len(vec) == 0 {
		s.log.WithContext(ctx).Warn("Search embedding unavailable, ranking against zero vector")
	}
	out, err := s.repo.RankBySimilarity(ctx, nil, vec, domain.SearchFilter{Genre: exactOrEmpty(in.Genre)}, s.cfg.searchLimit(in.Limit))
	if err != nil {
		return nil, fmt.Errorf("search stock clips: %w", err)
	}
	return out, nil
}

func (s *stockClipService) FetchAll(ctx context.Context, params domain.ListParams) (*domain.Page[*domain.StockClip], error) {
	params = params.Normalize(domain.ClipSortFields)
	items, total, err := s.repo.ListFiltered(ctx, nil, params)
	if err != nil {
		return nil, fmt.Errorf("fetch stock clips: %w", err)
	}
	return pageOf(items, total, params), nil
}
