package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type StockImage struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ChannelID   string           `gorm:"column:channel_id;not null;index:idx_stock_images_channel_created,priority:1" json:"channel_id"`
	Name        string           `gorm:"column:name;not null" json:"name"`
	Description *string          `gorm:"column:description" json:"description,omitempty"`
	URL         string           `gorm:"column:url;not null" json:"url"`
	Tags        StringArray      `gorm:"column:tags;type:text[];not null;default:'{}'" json:"tags"`
	Embedding   *pgvector.Vector `gorm:"column:embedding;type:vector(1536)" json:"-"`
	CreatedAt   time.Time        `gorm:"not null;default:now();index:idx_stock_images_channel_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
}

func (StockImage) TableName() string { return "stock_images" }

func (i *StockImage) HasEmbedding() bool { return i != nil && i.Embedding != nil }

var ImageSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
}
