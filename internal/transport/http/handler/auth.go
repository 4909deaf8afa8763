package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"communerag/internal/app"
	"communerag/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type TokenRequest struct {
	ClientName string `json:"client_name" binding:"required,min=3,max=64"`
	APIKey     string `json:"api_key" binding:"required,min=8,max=128"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	token, err := h.authService.IssueToken(req.ClientName, req.APIKey)
	if err != nil {
		respondAppError(c, err, "issue token failed")
		return
	}

	response.OK(c, gin.H{"token": token})
}
