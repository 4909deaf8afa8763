package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"communerag/internal/ai"
	"communerag/internal/app"
	"communerag/internal/index"
	"communerag/internal/transport/http/response"
)

// respondAppError maps service-layer sentinels onto the response envelope.
// Errors outside the sentinel set get the handler's fallback message so raw
// internals never reach a client.
func respondAppError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, index.ErrEmptyIndex):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, app.ErrInteractionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeInteractionNotFound, err.Error())
	case errors.Is(err, app.ErrIndexUnavailable):
		response.Error(c, http.StatusServiceUnavailable, response.CodeIndexUnavailable, err.Error())
	case errors.Is(err, ai.ErrEmbeddingService), errors.Is(err, ai.ErrGenerationService):
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailed, "language model service unavailable")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
