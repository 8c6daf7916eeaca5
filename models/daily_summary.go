package models

import "time"

type DailySummary struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string `gorm:"type:varchar(36);uniqueIndex:idx_summary_user_date;not null" json:"user_id"`
	SummaryDate string `gorm:"size:10;uniqueIndex:idx_summary_user_date;not null" json:"summary_date"`

	TotalCalories float64 `json:"total_calories"`
	TotalProteinG float64 `json:"total_protein_g"`
	TotalFatG     float64 `json:"total_fat_g"`
	TotalCarbG    float64 `json:"total_carb_g"`
	MealCount     int     `json:"meal_count"`

	CalorieAchievement *float64 `json:"calorie_achievement"`
	ProteinAchievement *float64 `json:"protein_achievement"`
	FatAchievement     *float64 `json:"fat_achievement"`
	CarbAchievement    *float64 `json:"carb_achievement"`

	TargetCalories *float64 `json:"target_calories"`
	TargetProteinG *float64 `json:"target_protein_g"`
	TargetFatG     *float64 `json:"target_fat_g"`
	TargetCarbG    *float64 `json:"target_carb_g"`

	AIAdvice string `gorm:"type:text" json:"ai_advice,omitempty"` // JSON

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
