package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/api/shared/errors"
	"github.com/pumprand/pump-client/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, errors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, errors.NewNotFoundError(message, details...))
}

// respondUpstreamError responds with a bad gateway error when the query API failed
func respondUpstreamError(c *gin.Context, err error, message string) {
	logger.WarnCtx(c.Request.Context(), message, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusBadGateway, errors.NewUpstreamError(message, err.Error()))
}
