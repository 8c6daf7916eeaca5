package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/utils"
)

const defaultOFFBaseURL = "https://world.openfoodfacts.org"

// ProductFetcher looks a barcode up in a product database. A product that does
// not exist is (nil, nil).
type ProductFetcher interface {
	FetchProduct(ctx context.Context, barcode string) (*models.FoodProduct, error)
}

type OpenFoodFactsClient struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

func NewOpenFoodFactsClient(baseURL string) *OpenFoodFactsClient {
	return &OpenFoodFactsClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code        string         `json:"code"`
	ProductName string         `json:"product_name"`
	Brands      string         `json:"brands"`
	ServingSize string         `json:"serving_size"`
	ImageURL    string         `json:"image_url"`
	Categories  string         `json:"categories"`
	Nutriments  map[string]any `json:"nutriments"`
}

// FetchProduct returns nutrients per 100 g.
func (c *OpenFoodFactsClient) FetchProduct(ctx context.Context, barcode string) (*models.FoodProduct, error) {
	// the barcode ends up in the URL path
	if !utils.ValidBarcode(barcode) {
		return nil, fmt.Errorf("invalid barcode format %q", barcode)
	}
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultOFFBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	ua := c.UserAgent
	if ua == "" {
		ua = "PFCBalanceApp/1.0"
	}

	url := fmt.Sprintf("%s/api/v2/product/%s.json", base, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", ua)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 {
		return nil, nil
	}
	return normalizeOFFProduct(barcode, parsed.Product), nil
}

func normalizeOFFProduct(barcode string, p offProduct) *models.FoodProduct {
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = utils.UnknownProductName
	}
	code := strings.TrimSpace(p.Code)
	if code == "" {
		code = barcode
	}
	return &models.FoodProduct{
		Barcode:     code,
		Name:        name,
		Brand:       strings.TrimSpace(p.Brands),
		Calories:    per100g(p.Nutriments, "energy-kcal"),
		Protein:     per100g(p.Nutriments, "proteins"),
		Fat:         per100g(p.Nutriments, "fat"),
		Carb:        per100g(p.Nutriments, "carbohydrates"),
		Fiber:       optionalPer100g(p.Nutriments, "fiber"),
		Sodium:      optionalPer100g(p.Nutriments, "sodium"),
		ServingSize: strings.TrimSpace(p.ServingSize),
		ImageURL:    p.ImageURL,
		Category:    p.Categories,
		Source:      models.SourceOpenFoodFacts,
	}
}

func per100g(n map[string]any, base string) float64 {
	if v := optionalPer100g(n, base); v != nil {
		return *v
	}
	return 0
}

func optionalPer100g(n map[string]any, base string) *float64 {
	var f float64
	switch t := n[base+"_100g"].(type) {
	case float64:
		f = t
	case string:
		v, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = v
	default:
		return nil
	}
	return &f
}
