package utils

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestDecodeDataURI(t *testing.T) {
	t.Parallel()

	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	img, err := DecodeDataURI("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.ContentType != "image/jpeg" || img.Ext != ".jpg" || string(img.Data) != string(payload) {
		t.Fatalf("unexpected image: %+v", img)
	}
}

func TestDecodeDataURIRejects(t *testing.T) {
	t.Parallel()

	tooBig := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", MaxImageBytes+1)))
	for name, uri := range map[string]string{
		"no prefix":  "aGVsbG8=",
		"not base64": "data:image/png;base64,@@@",
		"not image":  "data:text/plain;base64,aGVsbG8=",
		"empty":      "data:image/png;base64,",
		"too large":  "data:image/png;base64," + tooBig,
	} {
		if _, err := DecodeDataURI(uri); !errors.Is(err, ErrInvalidDataURI) {
			t.Fatalf("%s: err = %v, want ErrInvalidDataURI", name, err)
		}
	}
}

func TestFormatAdviceDigest(t *testing.T) {
	t.Parallel()

	body := FormatAdviceDigest("2026-03-01", AdviceResult{
		Summary:            "タンパク質が不足気味です",
		DeficientNutrients: []DeficientNutrient{{Nutrient: "タンパク質", Deficit: 32.5, Recommendations: []string{"納豆"}}},
		MealSuggestions:    []string{"夕食に焼き魚を追加"},
	})
	for _, want := range []string{"2026-03-01", "タンパク質が不足気味です", "32.5g 不足", "・納豆", "- 夕食に焼き魚を追加"} {
		if !strings.Contains(body, want) {
			t.Fatalf("digest missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "摂りすぎ") {
		t.Fatalf("empty section rendered:\n%s", body)
	}
}
