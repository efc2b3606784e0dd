package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/stockmedia-backend/internal/http/handlers"
	httpMW "github.com/yungbote/stockmedia-backend/internal/http/middleware"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	StockClipHandler     *httpH.StockClipHandler
	StockImageHandler    *httpH.StockImageHandler
	TranscriptionHandler *httpH.TranscriptionHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	// Stock clips
	if cfg.StockClipHandler != nil {
		r.POST("/stock-clips", cfg.StockClipHandler.Create)
		r.GET("/stock-clips/search", cfg.StockClipHandler.Search)
		r.GET("/stock-clips", cfg.StockClipHandler.FetchAll)
	}

	// Stock images
	if cfg.StockImageHandler != nil {
		r.POST("/stock-images", cfg.StockImageHandler.Create)
		r.GET("/stock-images/search", cfg.StockImageHandler.Search)
		r.GET("/stock-images", cfg.StockImageHandler.FetchAll)
	}

	// Transcription
	if cfg.TranscriptionHandler != nil {
		r.POST("/transcription", cfg.TranscriptionHandler.Transcribe)
	}

	return r
}
