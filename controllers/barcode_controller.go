package controllers

import (
	"net/http"
	"strconv"

	"github.com/ashin12345678/pfc-balance-app/services"

	"github.com/gin-gonic/gin"
)

type BarcodeController struct {
	Svc *services.BarcodeService
}

func NewBarcodeController(svc *services.BarcodeService) *BarcodeController {
	return &BarcodeController{Svc: svc}
}

// Lookup answers GET /barcode/:code. An optional ?grams= adds the nutrition
// of that serving.
func (h *BarcodeController) Lookup(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p, err := h.Svc.Lookup(c.Request.Context(), userID, c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	if g, err := strconv.ParseFloat(c.Query("grams"), 64); err == nil && g > 0 {
		respondOK(c, http.StatusOK, gin.H{"product": p, "serving": services.CalculateServingNutrition(p, g)})
		return
	}
	respondOK(c, http.StatusOK, p)
}
