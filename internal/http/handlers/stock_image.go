package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/stockmedia-backend/internal/http/response"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
	"github.com/yungbote/stockmedia-backend/internal/services"
)

type StockImageHandler struct {
	log     *logger.Logger
	service services.StockImageService
}

func NewStockImageHandler(log *logger.Logger, service services.StockImageService) *StockImageHandler {
	return &StockImageHandler{log: log.With("handler", "StockImageHandler"), service: service}
}

type createStockImageRequest struct {
	ChannelID   string   `json:"channel_id" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	URL         string   `json:"url" binding:"required"`
	Tags        []string `json:"tags" binding:"required"`
}

// POST /stock-images
func (h *StockImageHandler) Create(c *gin.Context) {
	var req createStockImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	img, err := h.service.Create(c.Request.Context(), services.CreateStockImageInput{
		ChannelID:   req.ChannelID,
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		Tags:        req.Tags,
	})
	if err != nil {
		respondServiceError(c, h.log, err, "create_stock_image_failed")
		return
	}
	response.RespondCreated(c, imageDTO(img))
}

type searchStockImagesQuery struct {
	ChannelID string `form:"channel_id" binding:"required"`
	Query     string `form:"query" binding:"required"`
	Limit     *int   `form:"limit" binding:"omitempty,gt=0"`
}

// GET /stock-images/search?channel_id=&query=&limit=
func (h *StockImageHandler) Search(c *gin.Context) {
	var q searchStockImagesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalid(c, err)
		return
	}
	imgs, err := h.service.Search(c.Request.Context(), services.SearchStockImagesInput{
		ChannelID: q.ChannelID,
		Query:     q.Query,
		Limit:     intOr(q.Limit, 0),
	})
	if err != nil {
		respondServiceError(c, h.log, err, "search_stock_images_failed")
		return
	}
	response.RespondOK(c, mapAll(imgs, imageDTO))
}

// GET /stock-images?channel_id=
func (h *StockImageHandler) FetchAll(c *gin.Context) {
	q, err := bindListQuery(c)
	if err != nil {
		respondInvalid(c, err)
		return
	}
	if q.ChannelID == "" {
		respondInvalid(c, errors.New("channel_id is required"))
		return
	}
	q.Genre = ""
	page, err := h.service.FetchAll(c.Request.Context(), q.params())
	if err != nil {
		respondServiceError(c, h.log, err, "fetch_stock_images_failed")
		return
	}
	response.RespondOK(c, PageDTO[StockImageDTO]{Items: mapAll(page.Items, imageDTO), Meta: page.Meta})
}
