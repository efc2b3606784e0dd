package app

import (
	"github.com/gin-gonic/gin"

	server "github.com/yungbote/stockmedia-backend/internal/http"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, h Handlers) *server.Server {
	log.Info("Wiring router...")
	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	routerCfg := server.RouterConfig{
		Log:                  log,
		AllowedOrigins:       cfg.AllowedOrigins,
		StockClipHandler:     h.StockClip,
		StockImageHandler:    h.StockImage,
		TranscriptionHandler: h.Transcription,
		HealthHandler:        h.Health,
	}
	if cfg.Otel.Enabled {
		routerCfg.ServiceName = cfg.ServiceName
	}
	return server.NewServer(routerCfg)
}
