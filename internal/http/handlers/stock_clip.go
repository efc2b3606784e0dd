package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/stockmedia-backend/internal/http/response"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
	"github.com/yungbote/stockmedia-backend/internal/services"
)

type StockClipHandler struct {
	log     *logger.Logger
	service services.StockClipService
}

func NewStockClipHandler(log *logger.Logger, service services.StockClipService) *StockClipHandler {
	return &StockClipHandler{log: log.With("handler", "StockClipHandler"), service: service}
}

type createStockClipRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	URL         string   `json:"url" binding:"required"`
	Genre       string   `json:"genre" binding:"required"`
	Duration    string   `json:"duration" binding:"required"`
	Tags        []string `json:"tags" binding:"required"`
}

// POST /stock-clips
func (h *StockClipHandler) Create(c *gin.Context) {
	var req createStockClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	clip, err := h.service.Create(c.Request.Context(), services.CreateStockClipInput{
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		Genre:       req.Genre,
		Duration:    req.Duration,
		Tags:        req.Tags,
	})
	if err != nil {
		respondServiceError(c, h.log, err, "create_stock_clip_failed")
		return
	}
	response.RespondCreated(c, clipDTO(clip))
}

type searchStockClipsQuery struct {
	Query string `form:"query" binding:"required"`
	Limit *int   `form:"limit" binding:"omitempty,gt=0"`
	Genre string `form:"genre"`
}

// GET /stock-clips/search?query=&limit=&genre=
func (h *StockClipHandler) Search(c *gin.Context) {
	var q searchStockClipsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalid(c, err)
		return
	}
	clips, err := h.service.Search(c.Request.Context(), services.SearchStockClipsInput{
		Query: q.Query,
		Limit: intOr(q.Limit, 0),
		Genre: q.Genre,
	})
	if err != nil {
		respondServiceError(c, h.log, err, "search_stock_clips_failed")
		return
	}
	response.RespondOK(c, mapAll(clips, clipDTO))
}

// GET /stock-clips
func (h *StockClipHandler) FetchAll(c *gin.Context) {
	q, err := bindListQuery(c)
	if err != nil {
		respondInvalid(c, err)
		return
	}
	q.ChannelID = ""
	page, err := h.service.FetchAll(c.Request.Context(), q.params())
	if err != nil {
		respondServiceError(c, h.log, err, "fetch_stock_clips_failed")
		return
	}
	response.RespondOK(c, PageDTO[StockClipDTO]{Items: mapAll(page.Items, clipDTO), Meta: page.Meta})
}
