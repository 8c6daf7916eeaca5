package models

import "time"

// Sources of a food product.
const (
	SourceOpenFoodFacts = "openfoodfacts"
	SourceAIEstimated   = "ai_estimated"
)

// A barcode product with nutrients per 100 g. AI estimates are stored per
// serving and flagged by Source.
type FoodProduct struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Barcode     string    `gorm:"size:14;uniqueIndex;not null" json:"barcode"`
	Name        string    `gorm:"not null" json:"name"`
	Brand       string    `json:"brands,omitempty"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Fat         float64   `json:"fat"`
	Carb        float64   `json:"carb"`
	Fiber       *float64  `json:"fiber,omitempty"`
	Sodium      *float64  `json:"sodium,omitempty"`
	ServingSize string    `json:"servingSize,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Category    string    `json:"category,omitempty"`
	Source      string    `gorm:"size:16;not null" json:"source"`
	Confidence  *float64  `json:"confidence,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
