package handler

import (
	"github.com/gin-gonic/gin"

	"communerag/internal/app"
	"communerag/internal/transport/http/response"
)

type AdminHandler struct {
	indexService *app.IndexService
}

func NewAdminHandler(indexService *app.IndexService) *AdminHandler {
	return &AdminHandler{indexService: indexService}
}

// Reindex rebuilds the search index from the document directory. The call
// is synchronous; the corpus is small enough that a rebuild fits inside a
// request.
func (h *AdminHandler) Reindex(c *gin.Context) {
	result, err := h.indexService.Rebuild(c.Request.Context())
	if err != nil {
		respondAppError(c, err, "reindex failed")
		return
	}
	response.OK(c, result)
}
