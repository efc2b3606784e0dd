package catalog

import (
	"math"
	"strings"
)

const (
	// EmbeddingDimensions is the width of every stored embedding column.
	EmbeddingDimensions = 1536

	DefaultPage        = 1
	DefaultPageLimit   = 10
	MaxPageLimit       = 100
	DefaultSearchLimit = 10
	DefaultSortField   = "created_at"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "asc"/"desc" in any case; anything else is desc.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// ListFilter is shared by clip and image listing. Genre only applies to clips,
// ChannelID only to images.
type ListFilter struct {
	ChannelID string
	Search    string
	Genre     string
	Tags      []string
}

type ListParams struct {
	Filter    ListFilter
	SortBy    string
	SortOrder SortOrder
	Page      int
	Limit     int
}

// Normalize fills defaults and clamps page/limit.
func (p ListParams) Normalize(allowed map[string]bool) ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	p.SortBy = strings.TrimSpace(p.SortBy)
	if !allowed[p.SortBy] {
		p.SortBy = DefaultSortField
	}
	if p.SortOrder != SortAsc {
		p.SortOrder = SortDesc
	}
	return p
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type PageMeta struct {
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPageMeta(total int64, page, limit int) PageMeta {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return PageMeta{TotalCount: total, Page: page, Limit: limit, TotalPages: pages}
}

type Page[T any] struct {
	Items []T      `json:"items"`
	Meta  PageMeta `json:"meta"`
}

type SearchFilter struct {
	ChannelID string
	Genre     string
}
