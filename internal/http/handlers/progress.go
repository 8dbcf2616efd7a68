package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ctfacademy/academy-backend/internal/http/response"
	pkgerrors "github.com/ctfacademy/academy-backend/internal/pkg/errors"
	"github.com/ctfacademy/academy-backend/internal/services"
)

type ProgressHandler struct {
	svc services.ProgressService
}

func NewProgressHandler(svc services.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

type saveRequest struct {
	LastState json.RawMessage `json:"last_state"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// POST /api/progress/:challengeID/save
func (h *ProgressHandler) Save(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("challengeID"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("invalid challenge id"))
		return
	}
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err))
		return
	}
	if err := h.svc.SaveSnapshot(c.Request.Context(), challengeID, req.LastState); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/progress/:challengeID/status
func (h *ProgressHandler) UpdateStatus(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("challengeID"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("invalid challenge id"))
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err))
		return
	}
	res, err := h.svc.UpdateStatus(c.Request.Context(), challengeID, req.Status)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"ok":             true,
		"status":         res.Status,
		"points_awarded": res.PointsAwarded,
		"message":        res.Message,
	})
}
