package utils

import (
	"strings"
	"testing"
)

func TestParseMealAnalysisProseWrapped(t *testing.T) {
	t.Parallel()

	text := `Sure! Here's the analysis: {"foods":[{"name":"鶏むね肉","calories":250,"protein":45,"fat":5,"carb":2}],"totalCalories":250,"totalProtein":45,"totalFat":5,"totalCarb":2,"confidence":0.9} Hope this helps!`
	res := ParseMealAnalysis(text)
	if !res.OK {
		t.Fatalf("parse failed: %s", res.Reason)
	}
	got := res.Value
	if len(got.Foods) != 1 {
		t.Fatalf("foods = %d, want 1", len(got.Foods))
	}
	f := got.Foods[0]
	if f.Name != "鶏むね肉" || f.Calories != 250 || f.Protein != 45 || f.Fat != 5 || f.Carb != 2 {
		t.Fatalf("unexpected food: %+v", f)
	}
	if got.TotalCalories != 250 || got.TotalProtein != 45 || got.TotalFat != 5 || got.TotalCarb != 2 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.Confidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", got.Confidence)
	}
}

func TestParseMealAnalysisFailures(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":     "",
		"no braces": "I could not analyze this meal.",
		"truncated": `{"foods":[{"name":"ramen","calories":500`,
		"invalid":   `{"foods": [1, 2,, ]}`,
		"no foods":  `{"totalCalories": 100}`,
		"foods obj": `{"foods": {"name": "rice"}}`,
	}
	for name, text := range cases {
		res := ParseMealAnalysis(text)
		if res.OK {
			t.Fatalf("%s: expected failure, got %+v", name, res.Value)
		}
		if res.Reason == "" {
			t.Fatalf("%s: failure without reason", name)
		}
	}
}

func TestParseMealAnalysisCoercesFields(t *testing.T) {
	t.Parallel()

	text := `{"foods":[{"calories":"120.5","protein":-3,"fat":null,"carb":"lots","servingSize":"1杯"},"junk",{"name":"味噌汁","calories":40}],"totalCalories":"160.5"}`
	res := ParseMealAnalysis(text)
	if !res.OK {
		t.Fatalf("parse failed: %s", res.Reason)
	}
	v := res.Value
	if len(v.Foods) != 2 {
		t.Fatalf("foods = %d, want 2 (non-objects skipped)", len(v.Foods))
	}
	first := v.Foods[0]
	if first.Name != UnknownFoodName || first.Calories != 120.5 || first.Protein != 0 || first.Fat != 0 || first.Carb != 0 || first.ServingSize != "1杯" {
		t.Fatalf("unexpected coerced food: %+v", first)
	}
	if v.TotalCalories != 160.5 {
		t.Fatalf("total calories = %v", v.TotalCalories)
	}
	if v.Confidence != DefaultConfidence {
		t.Fatalf("missing confidence = %v, want %v", v.Confidence, DefaultConfidence)
	}
	if sum := v.SumFoods(); sum.Calories != 160.5 {
		t.Fatalf("sum of foods = %v", sum.Calories)
	}
}

func TestParseMealAnalysisConfidenceBounds(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		`{"foods":[],"confidence":0}`:      0,
		`{"foods":[],"confidence":1.7}`:    1,
		`{"foods":[],"confidence":-2}`:     0,
		`{"foods":[],"confidence":"high"}`: DefaultConfidence,
	}
	for text, want := range cases {
		res := ParseMealAnalysis(text)
		if !res.OK || res.Value.Confidence != want {
			t.Fatalf("%s: confidence = %v ok=%v, want %v", text, res.Value.Confidence, res.OK, want)
		}
	}
}

func TestExtractJSONObjectIgnoresBracesInStrings(t *testing.T) {
	t.Parallel()

	got, ok := ExtractJSONObject(`prefix {"summary":"use {braces} freely","n":{"x":1}} trailing {"second":true}`)
	if !ok {
		t.Fatalf("no object extracted")
	}
	want := `{"summary":"use {braces} freely","n":{"x":1}}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseAdviceDefaultsLists(t *testing.T) {
	t.Parallel()

	res := ParseAdvice(`{"summary":"タンパク質が不足しています","deficientNutrients":[{"nutrient":"タンパク質","deficit":30,"recommendations":["サラダチキン","ゆで卵"]}]}`)
	if !res.OK {
		t.Fatalf("parse failed: %s", res.Reason)
	}
	v := res.Value
	if v.OverconsumedNutrients == nil || len(v.OverconsumedNutrients) != 0 {
		t.Fatalf("overconsumed = %#v, want empty non-nil slice", v.OverconsumedNutrients)
	}
	if v.MealSuggestions == nil {
		t.Fatalf("meal suggestions must not be nil")
	}
	if len(v.DeficientNutrients) != 1 || v.DeficientNutrients[0].Deficit != 30 || len(v.DeficientNutrients[0].Recommendations) != 2 {
		t.Fatalf("unexpected deficient nutrients: %+v", v.DeficientNutrients)
	}
}

func TestParseAdviceFailure(t *testing.T) {
	t.Parallel()

	if res := ParseAdvice("no json here"); res.OK {
		t.Fatalf("expected failure")
	}
}

func TestParseProductEstimate(t *testing.T) {
	t.Parallel()

	res := ParseProductEstimate("```json\n{\"calories\":150,\"protein\":2,\"fat\":8,\"carb\":18,\"servingSize\":\"1袋\",\"confidence\":0.3}\n```")
	if !res.OK {
		t.Fatalf("parse failed: %s", res.Reason)
	}
	v := res.Value
	if v.Name != UnknownProductName || v.Calories != 150 || v.ServingSize != "1袋" || v.Confidence != 0.3 {
		t.Fatalf("unexpected estimate: %+v", v)
	}
}

func TestSanitizeMealText(t *testing.T) {
	t.Parallel()

	if got := SanitizeMealText("サラダ{チキン}[玄米]"); got != "サラダチキン玄米" {
		t.Fatalf("got %q", got)
	}
	long := strings.Repeat("あ", MaxMealTextLength+20)
	if got := SanitizeMealText(long); len([]rune(got)) != MaxMealTextLength {
		t.Fatalf("length = %d runes, want %d", len([]rune(got)), MaxMealTextLength)
	}
	if got := SanitizeMealText("  {}[]  "); got != "" {
		t.Fatalf("structural-only text = %q, want empty", got)
	}
}

func TestSanitizeMealType(t *testing.T) {
	t.Parallel()

	if SanitizeMealType(" Lunch ") != MealLunch {
		t.Fatalf("lunch not recognized")
	}
	if SanitizeMealType("brunch") != MealTypeUnknown || ValidMealType("brunch") {
		t.Fatalf("unknown type accepted")
	}
}

func TestValidBarcode(t *testing.T) {
	t.Parallel()

	for code, want := range map[string]bool{
		"4901085141434": true, "12345678": true, "1234567": false, "123456789012345": false, "49010851414a4": false, "": false,
	} {
		if got := ValidBarcode(code); got != want {
			t.Fatalf("ValidBarcode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestParseMealAnalysisSkipsBracesInProse(t *testing.T) {
	t.Parallel()

	res := ParseMealAnalysis(`I used the {format} you asked: {"foods":[{"name":"味噌汁","calories":40}],"confidence":0.6}`)
	if !res.OK {
		t.Fatalf("parse failed: %s", res.Reason)
	}
	if len(res.Value.Foods) != 1 || res.Value.Foods[0].Name != "味噌汁" {
		t.Fatalf("unexpected foods %+v", res.Value.Foods)
	}
	if span, _ := ExtractJSONObject("a {b} c {}"); span != "{b}" {
		t.Fatalf("ExtractJSONObject = %q, want the first span", span)
	}
}
