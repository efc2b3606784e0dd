package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/stockmedia-backend/internal/http/response"
	pkgerrors "github.com/yungbote/stockmedia-backend/internal/pkg/errors"
	"github.com/yungbote/stockmedia-backend/internal/platform/apierr"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

// toAPIError maps service errors onto HTTP statuses. code names the failed
// operation for anything that is not the caller's fault.
func toAPIError(err error, code string) *apierr.Error {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return apierr.BadRequest(err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		return apierr.New(http.StatusNotFound, apierr.CodeNotFound, err)
	case errors.Is(err, pkgerrors.ErrUpstream):
		return apierr.New(http.StatusBadGateway, code, err)
	default:
		return apierr.From(err, code)
	}
}

func respondServiceError(c *gin.Context, log *logger.Logger, err error, code string) {
	ae := toAPIError(err, code)
	if ae.Status >= http.StatusInternalServerError {
		log.WithContext(c.Request.Context()).Error("Request failed", "code", ae.Code, "error", err)
		_ = c.Error(err)
	}
	response.RespondAPIError(c, ae)
}

func respondInvalid(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
}
