package domain

import (
	"github.com/yungbote/stockmedia-backend/internal/domain/catalog"
	"github.com/yungbote/stockmedia-backend/internal/domain/transcription"
)

const (
	EmbeddingDimensions = catalog.EmbeddingDimensions
	FramesPerSecond     = transcription.FramesPerSecond
)

type (
	StockClip    = catalog.StockClip
	StockImage   = catalog.StockImage
	StringArray  = catalog.StringArray
	ListFilter   = catalog.ListFilter
	ListParams   = catalog.ListParams
	SearchFilter = catalog.SearchFilter
	PageMeta     = catalog.PageMeta
	SortOrder    = catalog.SortOrder

	Token        = transcription.Token
	Caption      = transcription.Caption
	CaptionTrack = transcription.CaptionTrack
)
