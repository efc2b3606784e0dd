package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	types "github.com/yungbote/stockmedia-backend/internal/domain"
)

// Axis returns a unit-ish vector with value v in component i; the rest are zero.
func Axis(i int, v float32) []float32 {
	vec := make([]float32, types.EmbeddingDimensions)
	vec[i] = v
	return vec
}

type ClipSeed struct {
	Name        string
	Description string
	Genre       string
	Tags        []string
	Embedding   []float32
	CreatedAt   time.Time
}

func SeedClip(tb testing.TB, ctx context.Context, tx *gorm.DB, s ClipSeed) *types.StockClip {
	tb.Helper()
	c := &types.StockClip{
		ID:       uuid.New(),
		Name:     s.Name,
		URL:      "https://cdn.example.com/clips/" + uuid.NewString() + ".mp4",
		Genre:    s.Genre,
		Duration: "10s",
		Tags:     types.StringArray(s.Tags),
	}
	if c.Genre == "" {
		c.Genre = "nature"
	}
	if s.Description != "" {
		d := s.Description
		c.Description = &d
	}
	if s.Embedding != nil {
		v := pgvector.NewVector(s.Embedding)
		c.Embedding = &v
	}
	if !s.CreatedAt.IsZero() {
		c.CreatedAt = s.CreatedAt
		c.UpdatedAt = s.CreatedAt
	}
	if c.Tags == nil {
		c.Tags = types.StringArray{}
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed clip: %v", err)
	}
	return c
}

type ImageSeed struct {
	ChannelID   string
	Name        string
	Description string
	Tags        []string
	Embedding   []float32
	CreatedAt   time.Time
}

func SeedImage(tb testing.TB, ctx context.Context, tx *gorm.DB, s ImageSeed) *types.StockImage {
	tb.Helper()
	img := &types.StockImage{
		ID:        uuid.New(),
		ChannelID: s.ChannelID,
		Name:      s.Name,
		URL:       "https://cdn.example.com/images/" + uuid.NewString() + ".jpg",
		Tags:      types.StringArray(s.Tags),
	}
	if s.Description != "" {
		d := s.Description
		img.Description = &d
	}
	if s.Embedding != nil {
		v := pgvector.NewVector(s.Embedding)
		img.Embedding = &v
	}
	if !s.CreatedAt.IsZero() {
		img.CreatedAt = s.CreatedAt
		img.UpdatedAt = s.CreatedAt
	}
	if img.Tags == nil {
		img.Tags = types.StringArray{}
	}
	if err := tx.WithContext(ctx).Create(img).Error; err != nil {
		tb.Fatalf("seed image: %v", err)
	}
	return img
}
