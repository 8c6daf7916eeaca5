package utils

import (
	"errors"
	"fmt"
	"math"
)

// Plausible body metric ranges, enforced where profile input enters the system.
const (
	MinHeightCm = 100.0
	MaxHeightCm = 250.0
	MinWeightKg = 20.0
	MaxWeightKg = 300.0
	MaxAgeYears = 130
)

// ValidateBodyMetrics rejects physiologically implausible input with INPUT_INVALID.
func ValidateBodyMetrics(heightCm, weightKg float64, ageYears int) error {
	if math.IsNaN(heightCm) || math.IsNaN(weightKg) {
		return NewAppError(ErrInputInvalid, errors.New("height and weight must be numbers"))
	}
	if heightCm < MinHeightCm || heightCm > MaxHeightCm {
		return NewAppError(ErrInputInvalid, fmt.Errorf("height %.1fcm out of range %.0f-%.0f", heightCm, MinHeightCm, MaxHeightCm))
	}
	if weightKg < MinWeightKg || weightKg > MaxWeightKg {
		return NewAppError(ErrInputInvalid, fmt.Errorf("weight %.1fkg out of range %.0f-%.0f", weightKg, MinWeightKg, MaxWeightKg))
	}
	if ageYears < 0 || ageYears > MaxAgeYears {
		return NewAppError(ErrInputInvalid, fmt.Errorf("age %d out of range 0-%d", ageYears, MaxAgeYears))
	}
	return nil
}

// CalculateBMI expects height in centimeters and weight in kilograms.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	h := heightCm / 100.0
	return round1(weightKg / (h * h)), nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	default:
		return "Obese"
	}
}
