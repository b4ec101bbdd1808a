package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/logging"
	"github.com/gin-gonic/gin"
)

var errInvalidBody = errors.New("invalid request body")

type errorResponse struct {
	Error  string              `json:"error"`
	Field  string              `json:"field,omitempty"`
	Fields []common.FieldError `json:"fields,omitempty"`
}

// fail writes the status and body for err. Login failures collapse into one
// message, and anything unrecognised is logged and reported as 500.
func (h *handler) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	log := logging.FromContext(ctx, h.logger)

	var (
		ve *common.ValidationError
		ce *common.ConflictError
	)

	switch {
	case errors.Is(err, errInvalidBody):
		c.JSON(http.StatusBadRequest, errorResponse{Error: errInvalidBody.Error()})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: ve.Fields})
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, errorResponse{Error: ce.Error(), Field: ce.Field})
	case errors.Is(err, common.ErrAuthenticationFailed):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: common.ErrAuthenticationFailed.Error()})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: common.ErrorUnauthorized.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: common.ErrorNotFound.Error()})
	case errors.Is(err, common.ErrTooManyRequests):
		c.JSON(http.StatusTooManyRequests, errorResponse{Error: common.ErrTooManyRequests.Error()})
	case errors.Is(err, common.ErrIntegrity):
		log.Error(ctx, "data integrity fault", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: common.ErrorInternal.Error()})
	default:
		log.Error(ctx, "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: common.ErrorInternal.Error()})
	}
}
