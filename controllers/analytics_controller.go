package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ashin12345678/pfc-balance-app/services"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc *services.AnalyticsService
}

func NewAnalyticsController(svc *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Svc: svc}
}

// GetAnalyticsSummary defaults to the current month.
func (h *AnalyticsController) GetAnalyticsSummary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)

	from, err := parseDay(c.DefaultQuery("from", first.Format(services.DateLayout)), now.Location())
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := parseDay(c.DefaultQuery("to", last.Format(services.DateLayout)), now.Location())
	if err != nil {
		respondError(c, err)
		return
	}
	includeMissing := c.DefaultQuery("includeMissingDays", "false") == "true"

	out, err := h.Svc.Summary(c.Request.Context(), userID, from, to, includeMissing)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, out)
}

func (h *AnalyticsController) GetWeeklyOverview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	now := time.Now()
	weekStart := startOfWeek(now)
	if v := c.Query("week_start"); v != "" {
		ws, err := parseDay(v, now.Location())
		if err != nil {
			respondError(c, err)
			return
		}
		weekStart = startOfWeek(ws)
	}
	mode := c.DefaultQuery("mode", "detailed")

	out, err := h.Svc.WeeklyOverview(c.Request.Context(), userID, weekStart, mode)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, out)
}

// --- helpers ---

func parseDay(v string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(services.DateLayout, v, loc)
	if err != nil {
		return time.Time{}, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("invalid date %q", v))
	}
	return t, nil
}

func startOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	tt := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return tt.AddDate(0, 0, -(wd - 1)) // Monday
}
