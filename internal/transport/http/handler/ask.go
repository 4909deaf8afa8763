package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"communerag/internal/ai"
	"communerag/internal/app"
	"communerag/internal/transport/http/response"
)

type AskHandler struct {
	askService   *app.AskService
	queryTimeout time.Duration
}

type AskRequest struct {
	Question string   `json:"question" binding:"required"`
	Variant  string   `json:"variant"`
	TopK     int      `json:"top_k"`
	MinScore *float64 `json:"min_score"`
}

func NewAskHandler(askService *app.AskService, queryTimeout time.Duration) *AskHandler {
	if queryTimeout <= 0 {
		queryTimeout = time.Minute
	}
	return &AskHandler{askService: askService, queryTimeout: queryTimeout}
}

func (h *AskHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.queryTimeout)
	defer cancel()

	result, err := h.askService.Ask(ctx, app.AskInput{
		Question: req.Question,
		Variant:  ai.ModelVariant(req.Variant),
		TopK:     req.TopK,
		MinScore: req.MinScore,
	})
	if err != nil {
		respondAppError(c, err, "ask failed")
		return
	}

	response.OK(c, result)
}
