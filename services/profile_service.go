package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RatioSumTolerance is how far the PFC ratios may stray from 100 percent.
const RatioSumTolerance = 0.5

// ProfileInput is a partial update; nil fields are left unchanged.
type ProfileInput struct {
	DisplayName        *string  `json:"display_name"`
	HeightCm           *float64 `json:"height_cm"`
	WeightKg           *float64 `json:"weight_kg"`
	TargetWeightKg     *float64 `json:"target_weight_kg"`
	Age                *int     `json:"age"`
	Gender             *string  `json:"gender"`
	ActivityLevel      *float64 `json:"activity_level"`
	Goal               *string  `json:"goal"`
	CalorieAdjustment  *float64 `json:"calorie_adjustment"`
	TargetProteinRatio *float64 `json:"target_protein_ratio"`
	TargetFatRatio     *float64 `json:"target_fat_ratio"`
	TargetCarbRatio    *float64 `json:"target_carb_ratio"`
}

type ProfileService struct {
	db           *gorm.DB
	calorieFloor float64
	logger       *zap.Logger
}

func NewProfileService(db *gorm.DB, calorieFloor float64, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{db: db, calorieFloor: calorieFloor, logger: logger}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, utils.NewAppError(utils.ErrAuthRequired, nil)
	}
	var p models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewAppError(utils.ErrAuthRequired, fmt.Errorf("profile %s not found", userID))
	}
	if err != nil {
		return nil, utils.NewAppError(utils.ErrServer, err)
	}
	return &p, nil
}

// Update applies in, validates the merged profile and stores it with freshly
// computed targets.
func (s *ProfileService) Update(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := ApplyProfileInput(p, in); err != nil {
		return nil, err
	}
	if err := ComputeProfileTargets(p, s.calorieFloor); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, utils.NewAppError(utils.ErrServer, err)
	}
	s.logger.Info("profile updated", zap.String("user_id", userID), zap.Float64("target_calories", *p.TargetCalories))
	return p, nil
}

// Targets returns the stored targets, computing them when the profile has
// never been saved with metrics.
func (s *ProfileService) Targets(ctx context.Context, userID string) (utils.NutritionTargets, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return utils.NutritionTargets{}, err
	}
	if t, ok := StoredTargets(p); ok {
		return t, nil
	}
	if err := ValidateProfile(p); err != nil {
		return utils.NutritionTargets{}, err
	}
	return utils.CalculateTargets(BodyProfileOf(p, s.calorieFloor))
}

// ApplyProfileInput merges the non-nil fields of in into p and validates the
// result.
func ApplyProfileInput(p *models.Profile, in ProfileInput) error {
	if in.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.HeightCm != nil {
		p.HeightCm = *in.HeightCm
	}
	if in.WeightKg != nil {
		p.WeightKg = *in.WeightKg
	}
	if in.TargetWeightKg != nil {
		p.TargetWeightKg = in.TargetWeightKg
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Gender != nil {
		p.Gender = strings.ToLower(strings.TrimSpace(*in.Gender))
	}
	if in.ActivityLevel != nil {
		p.ActivityLevel = *in.ActivityLevel
	}
	if in.Goal != nil {
		p.Goal = strings.ToLower(strings.TrimSpace(*in.Goal))
	}
	if in.CalorieAdjustment != nil {
		p.CalorieAdjustment = in.CalorieAdjustment
	}
	if in.TargetProteinRatio != nil {
		p.TargetProteinRatio = *in.TargetProteinRatio
	}
	if in.TargetFatRatio != nil {
		p.TargetFatRatio = *in.TargetFatRatio
	}
	if in.TargetCarbRatio != nil {
		p.TargetCarbRatio = *in.TargetCarbRatio
	}
	return ValidateProfile(p)
}

// ValidateProfile enforces the input-boundary rules on a profile.
func ValidateProfile(p *models.Profile) error {
	if err := utils.ValidateBodyMetrics(p.HeightCm, p.WeightKg, p.Age); err != nil {
		return err
	}
	if s := utils.Sex(p.Gender); s != utils.SexMale && s != utils.SexFemale {
		return utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("gender must be male or female, got %q", p.Gender))
	}
	if !utils.ValidActivityMultiplier(p.ActivityLevel) {
		return utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("activity level %v is not one of %v", p.ActivityLevel, utils.ActivityLevels))
	}
	if !utils.ValidGoal(utils.Goal(p.Goal)) {
		return utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("goal must be lose, maintain or gain, got %q", p.Goal))
	}
	if adj := p.CalorieAdjustment; adj != nil && (math.IsNaN(*adj) || math.Abs(*adj) > 2000) {
		return utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("calorie adjustment %v out of range", *adj))
	}
	return ValidateRatios(p.TargetProteinRatio, p.TargetFatRatio, p.TargetCarbRatio)
}

// ValidateRatios requires non-negative ratios summing to 100 within
// RatioSumTolerance.
func ValidateRatios(protein, fat, carb float64) error {
	for _, r := range []float64{protein, fat, carb} {
		if math.IsNaN(r) || r < 0 || r > 100 {
			return utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("ratio %v out of range 0-100", r))
		}
	}
	if sum := protein + fat + carb; math.Abs(sum-100) > RatioSumTolerance {
		return utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("PFC ratios must sum to 100, got %.1f", sum))
	}
	return nil
}

func BodyProfileOf(p *models.Profile, calorieFloor float64) utils.BodyProfile {
	return utils.BodyProfile{
		WeightKg:           p.WeightKg,
		HeightCm:           p.HeightCm,
		AgeYears:           p.Age,
		Sex:                utils.Sex(p.Gender),
		ActivityMultiplier: p.ActivityLevel,
		Goal:               utils.Goal(p.Goal),
		GoalAdjustment:     p.CalorieAdjustment,
		ProteinRatio:       p.TargetProteinRatio,
		FatRatio:           p.TargetFatRatio,
		CarbRatio:          p.TargetCarbRatio,
		CalorieFloor:       calorieFloor,
	}
}

// ComputeProfileTargets fills the BMR/TDEE/target columns of p.
func ComputeProfileTargets(p *models.Profile, calorieFloor float64) error {
	t, err := utils.CalculateTargets(BodyProfileOf(p, calorieFloor))
	if err != nil {
		return err
	}
	round := func(v float64) *float64 {
		r := math.Round(v*10) / 10
		return &r
	}
	p.BMR = round(t.BMR)
	p.TDEE = round(t.TDEE)
	p.TargetCalories = round(t.TargetCalories)
	p.TargetProteinG = round(t.TargetProtein)
	p.TargetFatG = round(t.TargetFat)
	p.TargetCarbG = round(t.TargetCarb)
	return nil
}

// StoredTargets returns the targets persisted on p, if any.
func StoredTargets(p *models.Profile) (utils.NutritionTargets, bool) {
	if !p.HasTargets() {
		return utils.NutritionTargets{}, false
	}
	t := utils.NutritionTargets{
		TargetCalories: *p.TargetCalories,
		TargetProtein:  *p.TargetProteinG,
		TargetFat:      *p.TargetFatG,
		TargetCarb:     *p.TargetCarbG,
	}
	if p.BMR != nil {
		t.BMR = *p.BMR
	}
	if p.TDEE != nil {
		t.TDEE = *p.TDEE
	}
	return t, true
}
