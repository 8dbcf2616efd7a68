package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ctfacademy/academy-backend/internal/http/response"
	"github.com/ctfacademy/academy-backend/internal/services"
)

type ChallengeHandler struct {
	svc      services.ChallengeService
	progress services.ProgressService
}

func NewChallengeHandler(svc services.ChallengeService, progress services.ProgressService) *ChallengeHandler {
	return &ChallengeHandler{svc: svc, progress: progress}
}

// GET /api/categories
func (h *ChallengeHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": categories})
}

// GET /api/challenges?category=<slug>
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	challenges, err := h.svc.ListChallenges(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"challenges": challenges})
}

// GET /api/challenges/:slug?readonly=1
//
// Opening without readonly is a progress event: the record is created
// on first sight and the editor opens with the save flag down.
func (h *ChallengeHandler) GetChallenge(c *gin.Context) {
	readOnly := c.Query("readonly") == "1" || c.Query("readonly") == "true"
	view, err := h.progress.OpenChallenge(c.Request.Context(), c.Param("slug"), readOnly)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}
