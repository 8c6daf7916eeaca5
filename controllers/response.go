package controllers

import (
	"net/http"

	"github.com/ashin12345678/pfc-balance-app/middlewares"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/gin-gonic/gin"
)

func userIDFromCtx(c *gin.Context) (string, bool) {
	id := c.GetString(middlewares.CtxUserID)
	return id, id != ""
}

// requireUser writes AUTH_REQUIRED when the request carries no user.
func requireUser(c *gin.Context) (string, bool) {
	id, ok := userIDFromCtx(c)
	if !ok {
		respondError(c, utils.NewAppError(utils.ErrAuthRequired, nil))
	}
	return id, ok
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondError maps err onto its code's status. Causes are only exposed
// outside release mode.
func respondError(c *gin.Context, err error) {
	ae := utils.AsAppError(err)
	c.JSON(ae.Status(), utils.ErrorResponse(err, gin.Mode() != gin.ReleaseMode))
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, utils.NewAppError(utils.ErrInputInvalid, err))
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
