package handlers

import (
	"time"

	"github.com/google/uuid"

	domain "github.com/yungbote/stockmedia-backend/internal/domain/catalog"
)

// Records never expose their embedding; clients only learn whether one exists.

type StockClipDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	URL          string    `json:"url"`
	Genre        string    `json:"genre"`
	Duration     string    `json:"duration"`
	Tags         []string  `json:"tags"`
	HasEmbedding bool      `json:"has_embedding"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type StockImageDTO struct {
	ID           uuid.UUID `json:"id"`
	ChannelID    string    `json:"channel_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	URL          string    `json:"url"`
	Tags         []string  `json:"tags"`
	HasEmbedding bool      `json:"has_embedding"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PageDTO[T any] struct {
	Items []T             `json:"items"`
	Meta  domain.PageMeta `json:"meta"`
}

func tagsOrEmpty(t domain.StringArray) []string {
	if t == nil {
		return []string{}
	}
	return []string(t)
}

func clipDTO(c *domain.StockClip) StockClipDTO {
	return StockClipDTO{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		URL:          c.URL,
		Genre:        c.Genre,
		Duration:     c.Duration,
		Tags:         tagsOrEmpty(c.Tags),
		HasEmbedding: c.HasEmbedding(),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func imageDTO(i *domain.StockImage) StockImageDTO {
	return StockImageDTO{
		ID:           i.ID,
		ChannelID:    i.ChannelID,
		Name:         i.Name,
		Description:  i.Description,
		URL:          i.URL,
		Tags:         tagsOrEmpty(i.Tags),
		HasEmbedding: i.HasEmbedding(),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func mapAll[S any, D any](in []S, f func(S) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
