package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/stockmedia-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes e's status and code. 5xx messages are replaced with
// the status text so store and driver details stay in the logs.
func RespondAPIError(c *gin.Context, e *apierr.Error) {
	if e.Status >= http.StatusInternalServerError && e.Status != http.StatusBadGateway {
		c.JSON(e.Status, ErrorEnvelope{Error: APIError{Message: http.StatusText(e.Status), Code: e.Code}})
		return
	}
	RespondError(c, e.Status, e.Code, e.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
