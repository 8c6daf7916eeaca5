package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/utils"
)

const testBarcode = "4901085141434"

func TestBarcodeLookupValidation(t *testing.T) {
	t.Parallel()

	svc := NewBarcodeService(&fakeFetcher{}, nil, nil, nil, instantPolicy(nil), nil)
	ctx := context.Background()

	if _, err := svc.Lookup(ctx, "", testBarcode); !utils.HasCode(err, utils.ErrAuthRequired) {
		t.Fatalf("no user: %v", err)
	}
	if _, err := svc.Lookup(ctx, "u", " "); !utils.HasCode(err, utils.ErrBarcodeNotProvided) {
		t.Fatalf("blank code: %v", err)
	}
	if _, err := svc.Lookup(ctx, "u", "12ab"); !utils.HasCode(err, utils.ErrInputInvalid) {
		t.Fatalf("bad code: %v", err)
	}
}

func TestBarcodeLookupFetchesAndStores(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{product: &models.FoodProduct{Barcode: testBarcode, Name: "お茶", Source: models.SourceOpenFoodFacts}}
	store := newMemProductStore()
	svc := NewBarcodeService(fetcher, store, nil, nil, instantPolicy(nil), nil)

	p, err := svc.Lookup(context.Background(), "u", testBarcode)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Name != "お茶" || p.ID == "" || store.saves != 1 {
		t.Fatalf("product=%+v saves=%d", p, store.saves)
	}

	// second lookup is served by the store
	if _, err := svc.Lookup(context.Background(), "u", testBarcode); err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetcher calls = %d, want 1", fetcher.calls)
	}
}

func TestBarcodeLookupUpstreamFailure(t *testing.T) {
	t.Parallel()

	svc := NewBarcodeService(&fakeFetcher{err: errors.New("connection reset")}, nil, nil, nil, instantPolicy(nil), nil)
	if _, err := svc.Lookup(context.Background(), "u", testBarcode); !utils.HasCode(err, utils.ErrBarcodeScanFailed) {
		t.Fatalf("err = %v", err)
	}
}

func TestBarcodeLookupNotFoundWithoutAI(t *testing.T) {
	t.Parallel()

	svc := NewBarcodeService(&fakeFetcher{}, nil, nil, nil, instantPolicy(nil), nil)
	if _, err := svc.Lookup(context.Background(), "u", testBarcode); !utils.HasCode(err, utils.ErrBarcodeProductNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestBarcodeLookupFallsBackToAIEstimate(t *testing.T) {
	t.Parallel()

	ai := &scriptedAI{replies: []aiReply{{text: `{"name":"ポテトチップス","calories":330,"protein":3,"fat":21,"carb":32,"servingSize":"1袋","confidence":0.4}`}}}
	store := newMemProductStore()
	svc := NewBarcodeService(&fakeFetcher{}, store, nil, ai, instantPolicy(nil), nil)

	p, err := svc.Lookup(context.Background(), "u", testBarcode)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Source != models.SourceAIEstimated || p.Name != "ポテトチップス" || p.Confidence == nil || *p.Confidence != 0.4 {
		t.Fatalf("unexpected estimate: %+v", p)
	}
	if store.saves != 0 {
		t.Fatalf("AI estimates must not be stored")
	}

	bad := NewBarcodeService(&fakeFetcher{}, nil, nil, &scriptedAI{replies: []aiReply{{text: "unknown"}}}, instantPolicy(nil), nil)
	if _, err := bad.Lookup(context.Background(), "u", testBarcode); !utils.HasCode(err, utils.ErrBarcodeProductNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestCalculateServingNutrition(t *testing.T) {
	t.Parallel()

	p := &models.FoodProduct{Calories: 537, Protein: 6.3, Fat: 34.7, Carb: 51.9}
	got := CalculateServingNutrition(p, 60)
	if got.Calories != 322 || got.Protein != 3.8 || got.Fat != 20.8 || got.Carb != 31.1 {
		t.Fatalf("unexpected serving: %+v", got)
	}
	if def := CalculateServingNutrition(p, 0); def.Calories != 537 {
		t.Fatalf("default serving = %+v", def)
	}
}
