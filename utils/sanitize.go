package utils

import (
	"regexp"
	"strings"
)

// MaxMealTextLength bounds user meal text embedded in AI prompts, in characters.
const MaxMealTextLength = 500

type MealType string

const (
	MealBreakfast   MealType = "breakfast"
	MealLunch       MealType = "lunch"
	MealDinner      MealType = "dinner"
	MealSnack       MealType = "snack"
	MealTypeUnknown MealType = "unknown"
)

var structuralChars = strings.NewReplacer("{", "", "}", "", "[", "", "]", "")

// SanitizeMealText strips JSON structural characters and bounds the length so
// user text cannot escape the data region of a prompt.
func SanitizeMealText(raw string) string {
	s := structuralChars.Replace(raw)
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > MaxMealTextLength {
		s = strings.TrimSpace(string(r[:MaxMealTextLength]))
	}
	return s
}

// SanitizeMealType maps raw onto the known meal types, or MealTypeUnknown.
func SanitizeMealType(raw string) MealType {
	switch t := MealType(strings.ToLower(strings.TrimSpace(raw))); t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return t
	default:
		return MealTypeUnknown
	}
}

// ValidMealType is the strict variant used for stored meal logs.
func ValidMealType(raw string) bool {
	return SanitizeMealType(raw) != MealTypeUnknown
}

var barcodePattern = regexp.MustCompile(`^[0-9]{8,14}$`)

// ValidBarcode reports whether code is an 8-14 digit EAN/UPC/JAN.
func ValidBarcode(code string) bool {
	return barcodePattern.MatchString(code)
}
