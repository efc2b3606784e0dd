package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/stockmedia-backend/internal/data/repos/catalog"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

type Repos struct {
	StockClip  catalog.StockClipRepo
	StockImage catalog.StockImageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		StockClip:  catalog.NewStockClipRepo(db, log),
		StockImage: catalog.NewStockImageRepo(db, log),
	}
}
