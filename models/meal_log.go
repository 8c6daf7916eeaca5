package models

import "time"

// Input types of a meal log.
const (
	InputText    = "text"
	InputBarcode = "barcode"
	InputManual  = "manual"
	InputOCR     = "ocr"
)

// One logged food, as entered or as estimated by the AI.
type MealLog struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          string    `gorm:"type:varchar(36);index:idx_meal_user_date;not null" json:"user_id"`
	MealDate        string    `gorm:"size:10;index:idx_meal_user_date;not null" json:"meal_date"` // YYYY-MM-DD
	MealType        string    `gorm:"size:10;not null" json:"meal_type"`
	InputType       string    `gorm:"size:10;not null" json:"input_type"`
	InputText       string    `gorm:"type:text" json:"input_text,omitempty"`
	Barcode         string    `gorm:"size:14" json:"barcode,omitempty"`
	FoodName        string    `gorm:"not null" json:"food_name"`
	Calories        float64   `json:"calories"`
	ProteinG        float64   `json:"protein_g"`
	FatG            float64   `json:"fat_g"`
	CarbG           float64   `json:"carb_g"`
	ServingSize     string    `json:"serving_size,omitempty"`
	AIResponse      string    `gorm:"type:text" json:"ai_response,omitempty"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
