package controllers

import (
	"net/http"

	"github.com/ashin12345678/pfc-balance-app/services"

	"github.com/gin-gonic/gin"
)

type UpdateMealInput struct {
	ID string `json:"id" binding:"required"`
	services.MealPatch
}

type MealPhotoInput struct {
	ID    string `json:"id" binding:"required"`
	Image string `json:"image" binding:"required"` // data URI
}

type MealController struct {
	Svc *services.MealService
}

func NewMealController(svc *services.MealService) *MealController {
	return &MealController{Svc: svc}
}

// List accepts ?date= or ?startDate=&endDate=, plus ?limit=.
func (h *MealController) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	q := services.MealQuery{
		DateRange: services.DateRange{
			Date:      c.Query("date"),
			StartDate: c.Query("startDate"),
			EndDate:   c.Query("endDate"),
		},
		Limit: services.ParseLimit(c.Query("limit")),
	}
	meals, err := h.Svc.List(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, meals)
}

func (h *MealController) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in services.MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	m, err := h.Svc.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, m)
}

func (h *MealController) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in UpdateMealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	m, err := h.Svc.Update(c.Request.Context(), userID, in.ID, in.MealPatch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, m)
}

func (h *MealController) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Query("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": c.Query("id")})
}

func (h *MealController) UploadPhoto(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in MealPhotoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	m, err := h.Svc.AttachPhoto(c.Request.Context(), userID, in.ID, in.Image)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, m)
}
