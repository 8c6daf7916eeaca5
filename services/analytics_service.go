package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"gorm.io/gorm"
)

type AnalyticsService struct {
	db       *gorm.DB
	profiles *ProfileService
}

func NewAnalyticsService(db *gorm.DB, profiles *ProfileService) *AnalyticsService {
	return &AnalyticsService{db: db, profiles: profiles}
}

// ---------- Summary ----------

type NutrAvg struct {
	AvgConsumed float64 `json:"avg_consumed"`
	AvgGoal     float64 `json:"avg_goal,omitempty"`
	AvgPercent  float64 `json:"avg_percent,omitempty"`
	Unit        string  `json:"unit,omitempty"`
}

type AnalyticsSummary struct {
	Range struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"range"`

	Macros map[string]NutrAvg `json:"macros"` // calories, protein, fat, carb

	// average share of calories from each macro, in percent
	PFCRatio utils.Macros `json:"pfc_ratio"`

	Metadata struct {
		DaysCounted        int  `json:"days_counted"`
		IncludeMissingDays bool `json:"include_missing_days"`
	} `json:"metadata"`
}

func (s *AnalyticsService) Summary(
	ctx context.Context, userID string, from, to time.Time, includeMissing bool,
) (*AnalyticsSummary, error) {
	if to.Before(from) {
		return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("range end %s before start %s", to.Format(DateLayout), from.Format(DateLayout)))
	}
	rows, err := s.summariesBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	goal := s.currentTargets(ctx, userID)
	return BuildAnalyticsSummary(rows, goal, from, to, includeMissing), nil
}

// BuildAnalyticsSummary averages daily rows over [from, to]. Days use the
// target snapshot stored on the row, falling back to goal.
func BuildAnalyticsSummary(rows []models.DailySummary, goal utils.NutritionTargets, from, to time.Time, includeMissing bool) *AnalyticsSummary {
	idx := indexByDate(rows)

	type acc struct{ sum, gsum, psum float64 }
	m := map[string]*acc{"calories": {}, "protein": {}, "fat": {}, "carb": {}}

	var dates []string
	if includeMissing {
		for d := dayStart(from); !d.After(dayStart(to)); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d.Format(DateLayout))
		}
	} else {
		for d := dayStart(from); !d.After(dayStart(to)); d = d.AddDate(0, 0, 1) {
			if _, ok := idx[d.Format(DateLayout)]; ok {
				dates = append(dates, d.Format(DateLayout))
			}
		}
	}

	for _, key := range dates {
		ds := idx[key] // zero value if not found
		g := targetsOf(ds, goal)
		type pair struct {
			k    string
			c, g float64
		}
		for _, p := range []pair{
			{"calories", ds.TotalCalories, g.TargetCalories},
			{"protein", ds.TotalProteinG, g.TargetProtein},
			{"fat", ds.TotalFatG, g.TargetFat},
			{"carb", ds.TotalCarbG, g.TargetCarb},
		} {
			m[p.k].sum += p.c
			m[p.k].gsum += p.g
			if p.g > 0 {
				m[p.k].psum += (p.c / p.g) * 100.0
			}
		}
	}

	n := len(dates)
	out := &AnalyticsSummary{}
	out.Range.From = from.Format(DateLayout)
	out.Range.To = to.Format(DateLayout)
	out.Metadata.DaysCounted = n
	out.Metadata.IncludeMissingDays = includeMissing

	nutr := func(k, unit string) NutrAvg {
		return NutrAvg{AvgConsumed: avg(m[k].sum, n), AvgGoal: avg(m[k].gsum, n), AvgPercent: avg(m[k].psum, n), Unit: unit}
	}
	out.Macros = map[string]NutrAvg{
		"calories": nutr("calories", "kcal"),
		"protein":  nutr("protein", "g"),
		"fat":      nutr("fat", "g"),
		"carb":     nutr("carb", "g"),
	}
	out.PFCRatio = utils.CalculatePFCRatio(m["protein"].sum, m["fat"].sum, m["carb"].sum)
	return out
}

// ---------- Weekly Overview ----------

type WeeklyOverviewResponse struct {
	WeekStart string `json:"week_start"`
	Mode      string `json:"mode"` // chart|detailed
	Days      any    `json:"days"`
}

type DayChart struct {
	Date        string             `json:"date"`
	Percentages map[string]float64 `json:"percentages"`
}

type Metric struct {
	Actual  float64         `json:"actual"`
	Target  float64         `json:"target"`
	Percent float64         `json:"percent"`
	Status  utils.PFCStatus `json:"status"`
}

type DayDetailed struct {
	Date      string            `json:"date"`
	MealCount int               `json:"meal_count"`
	Metrics   map[string]Metric `json:"metrics"`
}

func (s *AnalyticsService) WeeklyOverview(
	ctx context.Context, userID string, weekStart time.Time, mode string,
) (*WeeklyOverviewResponse, error) {
	if mode != "chart" && mode != "detailed" {
		return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("mode must be 'chart' or 'detailed', got %q", mode))
	}
	from := dayStart(weekStart)
	rows, err := s.summariesBetween(ctx, userID, from, from.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}
	return BuildWeeklyOverview(rows, s.currentTargets(ctx, userID), from, mode), nil
}

// BuildWeeklyOverview lays out seven days from weekStart.
func BuildWeeklyOverview(rows []models.DailySummary, goal utils.NutritionTargets, weekStart time.Time, mode string) *WeeklyOverviewResponse {
	from := dayStart(weekStart)
	idx := indexByDate(rows)
	out := &WeeklyOverviewResponse{WeekStart: from.Format(DateLayout), Mode: mode}

	if mode == "chart" {
		days := make([]DayChart, 0, 7)
		for i := 0; i < 7; i++ {
			key := from.AddDate(0, 0, i).Format(DateLayout)
			ds := idx[key]
			g := targetsOf(ds, goal)
			days = append(days, DayChart{
				Date: key,
				Percentages: map[string]float64{
					"calories": pct(ds.TotalCalories, g.TargetCalories),
					"protein":  pct(ds.TotalProteinG, g.TargetProtein),
					"fat":      pct(ds.TotalFatG, g.TargetFat),
					"carb":     pct(ds.TotalCarbG, g.TargetCarb),
				},
			})
		}
		out.Days = days
		return out
	}

	metric := func(actual, target float64) Metric {
		p := pct(actual, target)
		return Metric{Actual: round2(actual), Target: round2(target), Percent: p, Status: utils.EvaluatePFCStatus(p)}
	}
	days := make([]DayDetailed, 0, 7)
	for i := 0; i < 7; i++ {
		key := from.AddDate(0, 0, i).Format(DateLayout)
		ds := idx[key]
		g := targetsOf(ds, goal)
		days = append(days, DayDetailed{
			Date:      key,
			MealCount: ds.MealCount,
			Metrics: map[string]Metric{
				"calories":  metric(ds.TotalCalories, g.TargetCalories),
				"protein_g": metric(ds.TotalProteinG, g.TargetProtein),
				"fat_g":     metric(ds.TotalFatG, g.TargetFat),
				"carb_g":    metric(ds.TotalCarbG, g.TargetCarb),
			},
		})
	}
	out.Days = days
	return out
}

// ---------- internals ----------

func (s *AnalyticsService) summariesBetween(ctx context.Context, userID string, from, to time.Time) ([]models.DailySummary, error) {
	if userID == "" {
		return nil, utils.NewAppError(utils.ErrAuthRequired, nil)
	}
	var rows []models.DailySummary
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND summary_date BETWEEN ? AND ?", userID, from.Format(DateLayout), to.Format(DateLayout)).
		Order("summary_date ASC").
		Find(&rows).Error; err != nil {
		return nil, utils.NewAppError(utils.ErrSummaryGetFailed, err)
	}
	return rows, nil
}

// currentTargets is the fallback for days without a stored snapshot. A
// profile without metrics yields zero targets.
func (s *AnalyticsService) currentTargets(ctx context.Context, userID string) utils.NutritionTargets {
	if s.profiles == nil {
		return utils.NutritionTargets{}
	}
	t, err := s.profiles.Targets(ctx, userID)
	if err != nil {
		return utils.NutritionTargets{}
	}
	return t
}

func indexByDate(rows []models.DailySummary) map[string]models.DailySummary {
	idx := make(map[string]models.DailySummary, len(rows))
	for _, r := range rows {
		idx[r.SummaryDate] = r
	}
	return idx
}

func targetsOf(ds models.DailySummary, fallback utils.NutritionTargets) utils.NutritionTargets {
	if ds.TargetCalories == nil || ds.TargetProteinG == nil || ds.TargetFatG == nil || ds.TargetCarbG == nil {
		return fallback
	}
	return utils.NutritionTargets{
		TargetCalories: *ds.TargetCalories,
		TargetProtein:  *ds.TargetProteinG,
		TargetFat:      *ds.TargetFatG,
		TargetCarb:     *ds.TargetCarbG,
	}
}

func pct(actual, goal float64) float64 {
	if goal <= 0 {
		if actual <= 0 {
			return 0
		}
		return 100
	}
	return round2((actual / goal) * 100.0)
}

func avg(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return round2(sum / float64(n))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
