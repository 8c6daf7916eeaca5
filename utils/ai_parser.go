package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Placeholders used when the AI omits a name.
const (
	UnknownFoodName    = "不明"
	UnknownProductName = "不明な商品"
)

// DefaultConfidence is used when the AI omits confidence or sends a non-number.
const DefaultConfidence = 0.5

// ParseResult is either OK with a Value, or a failure with a Reason.
type ParseResult[T any] struct {
	Value  T
	OK     bool
	Reason string
}

func parsed[T any](v T) ParseResult[T] { return ParseResult[T]{Value: v, OK: true} }

func parseFailure[T any](format string, args ...any) ParseResult[T] {
	return ParseResult[T]{Reason: fmt.Sprintf(format, args...)}
}

type FoodItem struct {
	Name        string  `json:"name"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Fat         float64 `json:"fat"`
	Carb        float64 `json:"carb"`
	ServingSize string  `json:"servingSize,omitempty"`
}

// MealAnalysisResult keeps both the per-item values and the totals reported by
// the AI; the two are not reconciled.
type MealAnalysisResult struct {
	Foods         []FoodItem `json:"foods"`
	TotalCalories float64    `json:"totalCalories"`
	TotalProtein  float64    `json:"totalProtein"`
	TotalFat      float64    `json:"totalFat"`
	TotalCarb     float64    `json:"totalCarb"`
	Confidence    float64    `json:"confidence"`
}

// SumFoods recomputes the totals from the individual items.
func (r MealAnalysisResult) SumFoods() FoodItem {
	var sum FoodItem
	for _, f := range r.Foods {
		sum.Calories += f.Calories
		sum.Protein += f.Protein
		sum.Fat += f.Fat
		sum.Carb += f.Carb
	}
	return sum
}

type DeficientNutrient struct {
	Nutrient        string   `json:"nutrient"`
	Deficit         float64  `json:"deficit"`
	Recommendations []string `json:"recommendations"`
}

type OverconsumedNutrient struct {
	Nutrient    string   `json:"nutrient"`
	Excess      float64  `json:"excess"`
	Suggestions []string `json:"suggestions"`
}

type AdviceResult struct {
	Summary               string                 `json:"summary"`
	DeficientNutrients    []DeficientNutrient    `json:"deficientNutrients"`
	OverconsumedNutrients []OverconsumedNutrient `json:"overconsumedNutrients"`
	MealSuggestions       []string               `json:"mealSuggestions"`
}

// ProductEstimate is an AI guess for a barcode that no product database knows.
type ProductEstimate struct {
	Name        string  `json:"name"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Fat         float64 `json:"fat"`
	Carb        float64 `json:"carb"`
	ServingSize string  `json:"servingSize,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// ExtractJSONObject returns the first balanced {...} span in text. Braces
// inside JSON strings are ignored. Truncated objects are not returned.
func ExtractJSONObject(text string) (string, bool) {
	start, end, ok := nextJSONSpan(text, 0)
	if !ok {
		return "", false
	}
	return text[start:end], true
}

// nextJSONSpan finds the first balanced {...} span starting at or after from.
func nextJSONSpan(text string, from int) (start, end int, ok bool) {
	i := strings.IndexByte(text[from:], '{')
	if i < 0 {
		return 0, 0, false
	}
	start = from + i
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return start, i + 1, true
			}
		}
	}
	return 0, 0, false
}

// decodeObject decodes the first balanced span that is a JSON object. A span
// that does not decode, such as "{format}" in prose, is skipped and the
// reason of the first failure is kept.
func decodeObject(text string) (map[string]any, string) {
	start, end, ok := nextJSONSpan(text, 0)
	if !ok {
		return nil, "no JSON object found in response"
	}
	reason := ""
	for ok {
		var obj map[string]any
		err := json.Unmarshal([]byte(text[start:end]), &obj)
		if err == nil {
			return obj, ""
		}
		if reason == "" {
			reason = fmt.Sprintf("invalid JSON: %v", err)
		}
		start, end, ok = nextJSONSpan(text, start+1)
	}
	return nil, reason
}

// ParseMealAnalysis turns AI text into a MealAnalysisResult. It never panics;
// any unusable input yields a failed ParseResult.
func ParseMealAnalysis(text string) ParseResult[MealAnalysisResult] {
	obj, reason := decodeObject(text)
	if obj == nil {
		return parseFailure[MealAnalysisResult]("%s", reason)
	}
	rawFoods, ok := obj["foods"].([]any)
	if !ok {
		return parseFailure[MealAnalysisResult]("foods array missing or not an array")
	}

	foods := make([]FoodItem, 0, len(rawFoods))
	for _, rf := range rawFoods {
		m, ok := rf.(map[string]any)
		if !ok {
			continue
		}
		foods = append(foods, FoodItem{
			Name:        coerceString(m["name"], UnknownFoodName),
			Calories:    coerceNonNegative(m["calories"]),
			Protein:     coerceNonNegative(m["protein"]),
			Fat:         coerceNonNegative(m["fat"]),
			Carb:        coerceNonNegative(m["carb"]),
			ServingSize: coerceString(m["servingSize"], ""),
		})
	}

	return parsed(MealAnalysisResult{
		Foods:         foods,
		TotalCalories: coerceNonNegative(obj["totalCalories"]),
		TotalProtein:  coerceNonNegative(obj["totalProtein"]),
		TotalFat:      coerceNonNegative(obj["totalFat"]),
		TotalCarb:     coerceNonNegative(obj["totalCarb"]),
		Confidence:    coerceConfidence(obj["confidence"]),
	})
}

// ParseAdvice turns AI text into an AdviceResult with every list non-nil.
func ParseAdvice(text string) ParseResult[AdviceResult] {
	obj, reason := decodeObject(text)
	if obj == nil {
		return parseFailure[AdviceResult]("%s", reason)
	}

	out := AdviceResult{
		Summary:               coerceString(obj["summary"], ""),
		DeficientNutrients:    []DeficientNutrient{},
		OverconsumedNutrients: []OverconsumedNutrient{},
		MealSuggestions:       coerceStrings(obj["mealSuggestions"]),
	}
	for _, it := range objects(obj["deficientNutrients"]) {
		out.DeficientNutrients = append(out.DeficientNutrients, DeficientNutrient{
			Nutrient:        coerceString(it["nutrient"], ""),
			Deficit:         coerceNonNegative(it["deficit"]),
			Recommendations: coerceStrings(it["recommendations"]),
		})
	}
	for _, it := range objects(obj["overconsumedNutrients"]) {
		out.OverconsumedNutrients = append(out.OverconsumedNutrients, OverconsumedNutrient{
			Nutrient:    coerceString(it["nutrient"], ""),
			Excess:      coerceNonNegative(it["excess"]),
			Suggestions: coerceStrings(it["suggestions"]),
		})
	}
	return parsed(out)
}

// ParseProductEstimate parses the AI answer of a barcode estimation prompt.
func ParseProductEstimate(text string) ParseResult[ProductEstimate] {
	obj, reason := decodeObject(text)
	if obj == nil {
		return parseFailure[ProductEstimate]("%s", reason)
	}
	return parsed(ProductEstimate{
		Name:        coerceString(obj["name"], UnknownProductName),
		Calories:    coerceNonNegative(obj["calories"]),
		Protein:     coerceNonNegative(obj["protein"]),
		Fat:         coerceNonNegative(obj["fat"]),
		Carb:        coerceNonNegative(obj["carb"]),
		ServingSize: coerceString(obj["servingSize"], ""),
		Confidence:  coerceConfidence(obj["confidence"]),
	})
}

// coerceNumber converts JSON numbers and numeric strings; anything else, NaN
// and infinities included, is reported as not ok.
func coerceNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func coerceNonNegative(v any) float64 {
	f, ok := coerceNumber(v)
	if !ok || f < 0 {
		return 0
	}
	return f
}

func coerceConfidence(v any) float64 {
	f, ok := coerceNumber(v)
	if !ok {
		return DefaultConfidence
	}
	return math.Max(0, math.Min(1, f))
}

func coerceString(v any, fallback string) string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	}
	if s == "" {
		return fallback
	}
	return s
}

func coerceStrings(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, it := range arr {
		if s := coerceString(it, ""); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func objects(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, it := range arr {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
