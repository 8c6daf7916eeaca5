package models

import "time"

// Profile is both the account and the body metrics used for target calculation.
type Profile struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `json:"display_name"`

	HeightCm       float64  `json:"height_cm"`
	WeightKg       float64  `json:"weight_kg"`
	TargetWeightKg *float64 `json:"target_weight_kg,omitempty"`
	Age            int      `json:"age"`
	Gender         string   `gorm:"size:8;default:male" json:"gender"`
	ActivityLevel  float64  `gorm:"default:1.55" json:"activity_level"`
	Goal           string   `gorm:"size:10;default:maintain" json:"goal"`
	// CalorieAdjustment replaces the goal's default adjustment when set.
	CalorieAdjustment *float64 `json:"calorie_adjustment,omitempty"`

	TargetProteinRatio float64 `gorm:"default:30" json:"target_protein_ratio"`
	TargetFatRatio     float64 `gorm:"default:25" json:"target_fat_ratio"`
	TargetCarbRatio    float64 `gorm:"default:45" json:"target_carb_ratio"`

	BMR            *float64 `json:"bmr"`
	TDEE           *float64 `json:"tdee"`
	TargetCalories *float64 `json:"target_calories"`
	TargetProteinG *float64 `json:"target_protein_g"`
	TargetFatG     *float64 `json:"target_fat_g"`
	TargetCarbG    *float64 `json:"target_carb_g"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTargets reports whether targets were computed for this profile.
func (p *Profile) HasTargets() bool {
	return p.TargetCalories != nil && p.TargetProteinG != nil && p.TargetFatG != nil && p.TargetCarbG != nil
}
