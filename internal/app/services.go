package app

import (
	"net/http"

	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
	"github.com/yungbote/stockmedia-backend/internal/services"
)

type Services struct {
	StockClip     services.StockClipService
	StockImage    services.StockImageService
	Transcription services.TranscriptionService
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")
	catalogCfg := services.CatalogConfig{SearchLimit: cfg.SearchLimit}
	return Services{
		StockClip:  services.NewStockClipService(log, catalogCfg, repos.StockClip, clients.Embedder),
		StockImage: services.NewStockImageService(log, catalogCfg, repos.StockImage, clients.Embedder),
		Transcription: services.NewTranscriptionService(log, services.TranscriptionConfig{
			HTTPClient:       &http.Client{Timeout: cfg.Transcription.Timeout},
			FetchRetries:     cfg.Transcription.FetchRetries,
			MaxDownloadBytes: cfg.Transcription.MaxDownloadBytes,
		}, clients.MediaTools, clients.Recognizer, clients.Objects),
	}
}
