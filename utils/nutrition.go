package utils

import (
	"fmt"
	"math"
)

// Energy per gram of each macro-nutrient.
const (
	KcalPerGramProtein = 4.0
	KcalPerGramFat     = 9.0
	KcalPerGramCarb    = 4.0
)

// MinTargetCalories is the floor applied to target calories.
const MinTargetCalories = 1000.0

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// ActivityLevels are the accepted activity multipliers, sedentary to very active.
var ActivityLevels = []float64{1.2, 1.375, 1.55, 1.725, 1.9}

// GoalAdjustments maps a goal to its daily calorie adjustment.
var GoalAdjustments = map[Goal]float64{
	GoalLose:     -500,
	GoalMaintain: 0,
	GoalGain:     300,
}

// Default PFC split in percent.
const (
	DefaultProteinRatio = 30.0
	DefaultFatRatio     = 25.0
	DefaultCarbRatio    = 45.0
)

// BodyProfile is the input of a single target calculation.
type BodyProfile struct {
	WeightKg           float64
	HeightCm           float64
	AgeYears           int
	Sex                Sex
	ActivityMultiplier float64
	Goal               Goal
	// GoalAdjustment overrides the conventional adjustment for Goal when non-nil.
	GoalAdjustment *float64
	ProteinRatio   float64
	FatRatio       float64
	CarbRatio      float64
	// CalorieFloor overrides MinTargetCalories when > 0.
	CalorieFloor float64
}

type Macros struct {
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
	Carb    float64 `json:"carb"`
}

type NutritionTargets struct {
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories float64 `json:"targetCalories"`
	TargetProtein  float64 `json:"targetProtein"`
	TargetFat      float64 `json:"targetFat"`
	TargetCarb     float64 `json:"targetCarb"`
}

// CalculateBMR uses Mifflin-St Jeor. Inputs are not range checked here.
func CalculateBMR(weightKg, heightCm float64, ageYears int, sex Sex) float64 {
	modifier := -161.0
	if sex == SexMale {
		modifier = 5
	}
	return 10*weightKg + 6.25*heightCm - 5*float64(ageYears) + modifier
}

func CalculateTDEE(bmr, activityMultiplier float64) (float64, error) {
	if activityMultiplier <= 0 || math.IsNaN(activityMultiplier) {
		return 0, NewAppError(ErrInputInvalid, fmt.Errorf("activity multiplier must be positive, got %v", activityMultiplier))
	}
	return bmr * activityMultiplier, nil
}

// CalculateTargetCalories adds the goal adjustment and floors the result at
// MinTargetCalories.
func CalculateTargetCalories(tdee, goalAdjustment float64) float64 {
	return CalculateTargetCaloriesWithFloor(tdee, goalAdjustment, MinTargetCalories)
}

// CalculateTargetCaloriesWithFloor is CalculateTargetCalories with a custom
// floor. A non-positive floor falls back to MinTargetCalories.
func CalculateTargetCaloriesWithFloor(tdee, goalAdjustment, floor float64) float64 {
	if floor <= 0 {
		floor = MinTargetCalories
	}
	target := tdee + goalAdjustment
	if math.IsNaN(target) || target < floor {
		return floor
	}
	return target
}

// CalculateTargetMacros splits targetCalories by the given percentages. The
// ratios are used as-is; keeping them summed to 100 is the caller's job.
func CalculateTargetMacros(targetCalories, proteinRatio, fatRatio, carbRatio float64) Macros {
	return Macros{
		Protein: targetCalories * proteinRatio / 100 / KcalPerGramProtein,
		Fat:     targetCalories * fatRatio / 100 / KcalPerGramFat,
		Carb:    targetCalories * carbRatio / 100 / KcalPerGramCarb,
	}
}

// CalculateTargets derives all daily targets from a profile.
func CalculateTargets(p BodyProfile) (NutritionTargets, error) {
	bmr := CalculateBMR(p.WeightKg, p.HeightCm, p.AgeYears, p.Sex)
	tdee, err := CalculateTDEE(bmr, p.ActivityMultiplier)
	if err != nil {
		return NutritionTargets{}, err
	}

	adj := GoalAdjustments[p.Goal]
	if p.GoalAdjustment != nil {
		adj = *p.GoalAdjustment
	}
	kcal := CalculateTargetCaloriesWithFloor(tdee, adj, p.CalorieFloor)

	pr, fr, cr := p.ProteinRatio, p.FatRatio, p.CarbRatio
	if pr == 0 && fr == 0 && cr == 0 {
		pr, fr, cr = DefaultProteinRatio, DefaultFatRatio, DefaultCarbRatio
	}
	m := CalculateTargetMacros(kcal, pr, fr, cr)

	return NutritionTargets{
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: kcal,
		TargetProtein:  m.Protein,
		TargetFat:      m.Fat,
		TargetCarb:     m.Carb,
	}, nil
}

// ValidActivityMultiplier reports whether m is one of ActivityLevels.
func ValidActivityMultiplier(m float64) bool {
	for _, l := range ActivityLevels {
		if math.Abs(l-m) < 1e-9 {
			return true
		}
	}
	return false
}

func ValidGoal(g Goal) bool {
	_, ok := GoalAdjustments[g]
	return ok
}

// CalculateAchievement returns current/target as a percentage with one
// decimal. A zero target yields 0.
func CalculateAchievement(current, target float64) float64 {
	if target == 0 {
		return 0
	}
	return math.Round(current/target*100*10) / 10
}

type PFCStatus string

const (
	StatusUnder PFCStatus = "under"
	StatusGood  PFCStatus = "good"
	StatusOver  PFCStatus = "over"
)

func EvaluatePFCStatus(achievement float64) PFCStatus {
	switch {
	case achievement < 80:
		return StatusUnder
	case achievement > 120:
		return StatusOver
	default:
		return StatusGood
	}
}

func EstimateCaloriesFromMacros(protein, fat, carb float64) float64 {
	return protein*KcalPerGramProtein + fat*KcalPerGramFat + carb*KcalPerGramCarb
}

// CalculatePFCRatio returns the energy share of each macro in whole percents.
func CalculatePFCRatio(protein, fat, carb float64) Macros {
	total := EstimateCaloriesFromMacros(protein, fat, carb)
	if total == 0 {
		return Macros{}
	}
	return Macros{
		Protein: math.Round(protein * KcalPerGramProtein / total * 100),
		Fat:     math.Round(fat * KcalPerGramFat / total * 100),
		Carb:    math.Round(carb * KcalPerGramCarb / total * 100),
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
