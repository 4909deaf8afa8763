package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"communerag/internal/app"
	"communerag/internal/transport/http/response"
)

type FeedbackHandler struct {
	feedbackService *app.FeedbackService
}

type FeedbackRequest struct {
	InteractionID string `json:"interaction_id" binding:"required,len=36"`
	Feedback      string `json:"feedback" binding:"required"`
	Comment       string `json:"comment" binding:"max=2000"`
}

func NewFeedbackHandler(feedbackService *app.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.feedbackService.Submit(req.InteractionID, req.Feedback, req.Comment); err != nil {
		respondAppError(c, err, "submit feedback failed")
		return
	}

	response.OK(c, gin.H{"interaction_id": req.InteractionID})
}
