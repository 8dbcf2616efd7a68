package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ctfacademy/academy-backend/internal/http/response"
	"github.com/ctfacademy/academy-backend/internal/services"
)

type FavoriteHandler struct {
	svc services.FavoriteService
}

func NewFavoriteHandler(svc services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

// POST /api/favorites/:challengeID/toggle
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("challengeID"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("invalid challenge id"))
		return
	}
	favorited, err := h.svc.Toggle(c.Request.Context(), challengeID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"favorited": favorited})
}

// GET /api/favorites
func (h *FavoriteHandler) List(c *gin.Context) {
	ids, err := h.svc.ListChallengeIDs(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	response.RespondOK(c, gin.H{"challenge_ids": ids})
}
