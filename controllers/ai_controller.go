package controllers

import (
	"net/http"

	"github.com/ashin12345678/pfc-balance-app/services"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/gin-gonic/gin"
)

type AnalyzeInput struct {
	Text     string `json:"text"`
	MealType string `json:"mealType"`
}

type AnalyzeImageInput struct {
	Image    string `json:"image"` // data URI
	MealType string `json:"mealType"`
}

// AdviceInput mirrors the day's intake; zero targets are filled from the
// stored profile and missing recent meals from the meal log.
type AdviceInput struct {
	CurrentCalories float64              `json:"currentCalories"`
	CurrentProtein  float64              `json:"currentProtein"`
	CurrentFat      float64              `json:"currentFat"`
	CurrentCarb     float64              `json:"currentCarb"`
	TargetCalories  float64              `json:"targetCalories"`
	TargetProtein   float64              `json:"targetProtein"`
	TargetFat       float64              `json:"targetFat"`
	TargetCarb      float64              `json:"targetCarb"`
	Goal            string               `json:"goal"`
	RecentMeals     []services.RecentMeal `json:"recentMeals"`
}

type AIController struct {
	Analysis *services.MealAnalysisService
	Advice   *services.AdviceService
	Profiles *services.ProfileService // optional
	Meals    *services.MealService    // optional
}

func (h *AIController) Analyze(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in AnalyzeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.Analysis.AnalyzeMealText(c.Request.Context(), userID, in.Text, in.MealType)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}

func (h *AIController) AnalyzeImage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in AnalyzeImageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.Analysis.AnalyzeImage(c.Request.Context(), userID, in.Image, in.MealType)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}

func (h *AIController) GenerateAdvice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in AdviceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()

	req := services.AdviceRequest{
		Intake: services.IntakeSummary{
			Calories: in.CurrentCalories,
			Protein:  in.CurrentProtein,
			Fat:      in.CurrentFat,
			Carb:     in.CurrentCarb,
		},
		Targets: utils.NutritionTargets{
			TargetCalories: in.TargetCalories,
			TargetProtein:  in.TargetProtein,
			TargetFat:      in.TargetFat,
			TargetCarb:     in.TargetCarb,
		},
		Goal:        utils.Goal(in.Goal),
		RecentMeals: in.RecentMeals,
	}

	if h.Profiles != nil && (req.Targets.TargetCalories <= 0 || req.Goal == "") {
		if p, err := h.Profiles.Get(ctx, userID); err == nil {
			if req.Goal == "" {
				req.Goal = utils.Goal(p.Goal)
			}
			if req.Targets.TargetCalories <= 0 {
				if t, ok := services.StoredTargets(p); ok {
					req.Targets = t
				}
			}
		}
	}
	if h.Meals != nil && len(req.RecentMeals) == 0 {
		if recent, err := h.Meals.Recent(ctx, userID, 10); err == nil {
			req.RecentMeals = recent
		}
	}

	res, err := h.Advice.GenerateAdvice(ctx, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}
