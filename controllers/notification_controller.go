package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ashin12345678/pfc-balance-app/services"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/gin-gonic/gin"
)

type toggleReq struct {
	Enabled bool `json:"enabled"`
}

type NotificationController struct {
	Push   *services.PushService
	Alerts *services.AlertBus
}

// POST /api/notifications/toggle
func (h *NotificationController) Toggle(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if h.Push == nil {
		respondError(c, utils.NewAppError(utils.ErrServer, errors.New("push not configured")))
		return
	}
	if err := h.Push.SetEnabled(c.Request.Context(), userID, req.Enabled); err != nil {
		respondError(c, utils.NewAppError(utils.ErrServer, err))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"enabled": req.Enabled})
}

// GET /api/alerts?limit=
func (h *NotificationController) ListAlerts(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	alerts, err := h.Alerts.ListAlerts(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, utils.NewAppError(utils.ErrServer, err))
		return
	}
	respondOK(c, http.StatusOK, alerts)
}
