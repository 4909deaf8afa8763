package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"communerag/internal/repository"
	"communerag/internal/transport/http/response"
)

type DocumentHandler struct {
	documents *repository.DocumentRepository
}

func NewDocumentHandler(documents *repository.DocumentRepository) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// List returns the corpus as it stood at the last successful index build.
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, gin.H{"documents": docs, "count": len(docs)})
}
