package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/logger"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	var upstream *domain.UpstreamStatusError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &upstream) && upstream.Service == chatServiceName:
		// Chat service 5xx statuses pass through; others become 502.
		if upstream.StatusCode >= http.StatusInternalServerError && upstream.StatusCode <= 599 {
			return upstream.StatusCode
		}
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrDispatcherClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// chatServiceName matches UpstreamStatusError.Service set by the chat client.
const chatServiceName = "chat service"

// abortWithError writes err as JSON and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Detail: err.Error()})
}

// abortWithDetail writes a fixed message.
func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}
