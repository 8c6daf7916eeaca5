package controllers

import (
	"net/http"
	"strings"

	"github.com/ashin12345678/pfc-balance-app/services"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/gin-gonic/gin"
)

type DeviceController struct {
	Push *services.PushService
}

func NewDeviceController(ps *services.PushService) *DeviceController {
	return &DeviceController{Push: ps}
}

func (dc *DeviceController) Register(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	var req services.RegisterDeviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	dev, err := dc.Push.RegisterDevice(c.Request.Context(), uid, req.Platform, req.Token)
	if err != nil {
		if strings.Contains(err.Error(), "platform") {
			err = utils.NewAppError(utils.ErrInputInvalid, err)
		}
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"endpoint_arn": dev.EndpointARN})
}
