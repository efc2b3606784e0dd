package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type StockClip struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string           `gorm:"column:name;not null" json:"name"`
	Description *string          `gorm:"column:description" json:"description,omitempty"`
	URL         string           `gorm:"column:url;not null" json:"url"`
	Genre       string           `gorm:"column:genre;not null;index" json:"genre"`
	Duration    string           `gorm:"column:duration;not null" json:"duration"`
	Tags        StringArray      `gorm:"column:tags;type:text[];not null;default:'{}'" json:"tags"`
	Embedding   *pgvector.Vector `gorm:"column:embedding;type:vector(1536)" json:"-"`
	CreatedAt   time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
}

func (StockClip) TableName() string { return "stock_clips" }

func (c *StockClip) HasEmbedding() bool { return c != nil && c.Embedding != nil }

// ClipSortFields is the allow-list for clip listing; anything else sorts by created_at.
var ClipSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"genre":      true,
	"duration":   true,
}
