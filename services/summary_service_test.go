package services

import (
	"testing"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/utils"
)

func TestValidDate(t *testing.T) {
	t.Parallel()

	for d, want := range map[string]bool{
		"2026-10-16": true,
		"2024-02-29": true,
		"2026-02-29": false,
		"2026-1-6":   false,
		"":           false,
		"2026/10/16": false,
	} {
		if got := ValidDate(d); got != want {
			t.Fatalf("ValidDate(%q) = %v", d, got)
		}
	}
}

func TestDateRangeValidate(t *testing.T) {
	t.Parallel()

	if err := (DateRange{StartDate: "2026-10-01", EndDate: "2026-10-16"}).Validate(); err != nil {
		t.Fatalf("valid range: %v", err)
	}
	if err := (DateRange{}).Validate(); err != nil {
		t.Fatalf("empty range: %v", err)
	}
	if err := (DateRange{StartDate: "2026-10-16", EndDate: "2026-10-01"}).Validate(); err == nil {
		t.Fatalf("reversed range accepted")
	}
	if err := (DateRange{Date: "yesterday"}).Validate(); err == nil {
		t.Fatalf("bad date accepted")
	}
}

func TestBuildDailySummary(t *testing.T) {
	t.Parallel()

	meals := []models.MealLog{
		{Calories: 500.25, ProteinG: 30, FatG: 10, CarbG: 60},
		{Calories: 700, ProteinG: 45.5, FatG: 20, CarbG: 80},
	}
	targets := &utils.NutritionTargets{TargetCalories: 2000, TargetProtein: 150, TargetFat: 55.6, TargetCarb: 225}

	s := BuildDailySummary("u1", "2026-10-16", meals, targets)
	if s.MealCount != 2 || s.TotalCalories != 1200.3 || s.TotalProteinG != 75.5 {
		t.Fatalf("totals = %+v", s)
	}
	if *s.CalorieAchievement != 60 || *s.ProteinAchievement != 50.3 || *s.TargetFatG != 55.6 {
		t.Fatalf("achievement cal=%v protein=%v", *s.CalorieAchievement, *s.ProteinAchievement)
	}
	if calorieOver(&s) {
		t.Fatalf("60%% is not over")
	}

	bare := BuildDailySummary("u1", "2026-10-16", nil, nil)
	if bare.MealCount != 0 || bare.CalorieAchievement != nil || bare.TargetCalories != nil {
		t.Fatalf("summary without targets = %+v", bare)
	}
}

func TestCalorieOverThreshold(t *testing.T) {
	t.Parallel()

	targets := &utils.NutritionTargets{TargetCalories: 2000, TargetProtein: 100, TargetFat: 50, TargetCarb: 250}
	over := BuildDailySummary("u1", "2026-10-16", []models.MealLog{{Calories: 2500}}, targets)
	if !calorieOver(&over) {
		t.Fatalf("125%% should be over")
	}
	edge := BuildDailySummary("u1", "2026-10-16", []models.MealLog{{Calories: 2400}}, targets)
	if calorieOver(&edge) {
		t.Fatalf("exactly 120%% should still be good")
	}
}
