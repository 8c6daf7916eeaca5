package controllers

import (
	"net/http"

	"github.com/ashin12345678/pfc-balance-app/services"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/gin-gonic/gin"
)

type SaveAdviceInput struct {
	Date     string             `json:"date" binding:"required"`
	AIAdvice utils.AdviceResult `json:"aiAdvice"`
}

type SummaryController struct {
	Svc *services.SummaryService
}

func NewSummaryController(svc *services.SummaryService) *SummaryController {
	return &SummaryController{Svc: svc}
}

func (h *SummaryController) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	out, err := h.Svc.List(c.Request.Context(), userID, services.DateRange{
		Date:      c.Query("date"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, out)
}

// SaveAdvice stores AI advice on the day's summary.
func (h *SummaryController) SaveAdvice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in SaveAdviceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	out, err := h.Svc.SaveAdvice(c.Request.Context(), userID, in.Date, in.AIAdvice)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, out)
}

func (h *SummaryController) EmailAdvice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Svc.EmailAdvice(c.Request.Context(), userID, c.Param("date")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusAccepted, gin.H{"date": c.Param("date")})
}
