package app

import (
	"errors"

	"communerag/internal/ai"
	"communerag/internal/index"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrIndexUnavailable    = errors.New("no index available, build one first")
	ErrInvalidCredential   = errors.New("invalid client name or api key")
	ErrInteractionNotFound = errors.New("interaction not found")
)

// errorKind labels an error for the interaction log and the API response.
// Callers get the kind, never a raw stack.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrIndexUnavailable):
		return "index_unavailable"
	case errors.Is(err, ai.ErrEmbeddingService):
		return "embedding_service"
	case errors.Is(err, ai.ErrGenerationService):
		return "generation_service"
	case errors.Is(err, index.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, index.ErrEmptyIndex):
		return "empty_index"
	case errors.Is(err, index.ErrCorruptIndex):
		return "corrupt_index"
	}
	return "internal"
}
