package app

import (
	httpH "github.com/yungbote/stockmedia-backend/internal/http/handlers"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

type Handlers struct {
	StockClip     *httpH.StockClipHandler
	StockImage    *httpH.StockImageHandler
	Transcription *httpH.TranscriptionHandler
	Health        *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, svcs Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		StockClip:     httpH.NewStockClipHandler(log, svcs.StockClip),
		StockImage:    httpH.NewStockImageHandler(log, svcs.StockImage),
		Transcription: httpH.NewTranscriptionHandler(log, svcs.Transcription),
		Health:        httpH.NewHealthHandler(db),
	}
}
