package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/stockmedia-backend/internal/http/response"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
	"github.com/yungbote/stockmedia-backend/internal/services"
)

type TranscriptionHandler struct {
	log     *logger.Logger
	service services.TranscriptionService
}

func NewTranscriptionHandler(log *logger.Logger, service services.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{log: log.With("handler", "TranscriptionHandler"), service: service}
}

// POST /transcription
// body: { "audioUrl": "https://..." | "gs://bucket/object" }
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	var req struct {
		AudioURL string `json:"audioUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	track, err := h.service.Transcribe(c.Request.Context(), req.AudioURL)
	if err != nil {
		respondServiceError(c, h.log, err, "transcription_failed")
		return
	}
	response.RespondOK(c, track)
}
