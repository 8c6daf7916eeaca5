package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashin12345678/pfc-balance-app/models"
)

func TestFetchProductParsesPer100g(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/product/4901085141434.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "PFCBalanceApp/1.0" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "product_name": " 緑茶 ",
    "brands": "Itoen",
    "serving_size": "525ml",
    "nutriments": {
      "energy-kcal_100g": 0,
      "proteins_100g": "0.1",
      "fat_100g": 0,
      "carbohydrates_100g": 0.2,
      "sodium_100g": 0.01
    }
  }
}`))
	}))
	defer ts.Close()

	c := &OpenFoodFactsClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	p, err := c.FetchProduct(context.Background(), "4901085141434")
	if err != nil {
		t.Fatalf("fetch product: %v", err)
	}
	if p == nil || p.Name != "緑茶" || p.Brand != "Itoen" || p.Barcode != "4901085141434" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if p.Protein != 0.1 || p.Carb != 0.2 || p.Fiber != nil || p.Sodium == nil || *p.Sodium != 0.01 {
		t.Fatalf("unexpected nutrients: %+v", p)
	}
	if p.Source != models.SourceOpenFoodFacts {
		t.Fatalf("source = %q", p.Source)
	}
}

func TestFetchProductNotFound(t *testing.T) {
	t.Parallel()

	for name, handler := range map[string]http.HandlerFunc{
		"404": func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
		"status 0": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":0,"status_verbose":"product not found"}`))
		},
	} {
		ts := httptest.NewServer(handler)
		c := &OpenFoodFactsClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
		p, err := c.FetchProduct(context.Background(), "12345678")
		ts.Close()
		if err != nil || p != nil {
			t.Fatalf("%s: got (%+v, %v), want (nil, nil)", name, p, err)
		}
	}
}

func TestFetchProductErrors(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := &OpenFoodFactsClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.FetchProduct(context.Background(), "12345678"); err == nil {
		t.Fatalf("expected error on 502")
	}
	if _, err := c.FetchProduct(context.Background(), "../etc"); err == nil {
		t.Fatalf("expected error on invalid barcode")
	}
}
