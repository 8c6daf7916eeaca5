package controllers

import (
	"net/http"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/services"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	Svc *services.ProfileService
}

func NewProfileController(svc *services.ProfileService) *ProfileController {
	return &ProfileController{Svc: svc}
}

// profileView adds BMI to the stored profile when height and weight are known.
type profileView struct {
	*models.Profile
	BMI         *float64 `json:"bmi,omitempty"`
	BMICategory string   `json:"bmi_category,omitempty"`
}

func viewOf(p *models.Profile) profileView {
	v := profileView{Profile: p}
	if bmi, err := utils.CalculateBMI(p.HeightCm, p.WeightKg); err == nil {
		v.BMI = &bmi
		v.BMICategory = utils.BMICategory(bmi)
	}
	return v
}

func (h *ProfileController) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, viewOf(p))
}

func (h *ProfileController) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, viewOf(p))
}

func (h *ProfileController) Targets(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	t, err := h.Svc.Targets(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, t)
}
