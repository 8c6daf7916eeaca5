package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const barcodeEstimationPrompt = `あなたは栄養士AIです。商品名から栄養成分を推定してください。

## タスク
1. 商品名から一般的な栄養成分を推定する
2. 日本で販売されている商品の標準的な栄養価を参考にする
3. 構造化されたJSONで回答する

## 回答フォーマット
{
  "name": "商品名",
  "calories": カロリー数値(kcal),
  "protein": タンパク質量(g),
  "fat": 脂質量(g),
  "carb": 炭水化物量(g),
  "servingSize": "1個などの量",
  "confidence": 0.0〜1.0の信頼度
}

## 注意事項
- 日本の一般的な商品の栄養価を参考にする
- 量が不明な場合は標準的な1個/1袋を想定
- 必ず有効なJSONのみを返す（説明文は不要）

バーコード: %s
※バーコード番号から日本で販売されている可能性のある商品を推測し、栄養成分を推定してください。
推測が難しい場合は、一般的なスナック菓子の栄養価を参考にしてください。`

// ProductStore persists products that were found upstream. A missing product
// is (nil, nil).
type ProductStore interface {
	FindByBarcode(ctx context.Context, barcode string) (*models.FoodProduct, error)
	Save(ctx context.Context, p *models.FoodProduct) error
}

type GormProductStore struct{ db *gorm.DB }

func NewGormProductStore(db *gorm.DB) *GormProductStore { return &GormProductStore{db: db} }

func (s *GormProductStore) FindByBarcode(ctx context.Context, barcode string) (*models.FoodProduct, error) {
	var p models.FoodProduct
	err := s.db.WithContext(ctx).Where("barcode = ?", barcode).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormProductStore) Save(ctx context.Context, p *models.FoodProduct) error {
	return s.db.WithContext(ctx).Save(p).Error
}

type BarcodeService struct {
	fetcher ProductFetcher
	store   ProductStore
	cache   *ResultCache
	ai      AIClient
	policy  utils.RetryPolicy
	logger  *zap.Logger
}

// NewBarcodeService wires the lookup chain. store, cache and ai may be nil.
func NewBarcodeService(fetcher ProductFetcher, store ProductStore, cache *ResultCache, ai AIClient, policy utils.RetryPolicy, logger *zap.Logger) *BarcodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.Logger == nil {
		policy.Logger = logger
	}
	return &BarcodeService{fetcher: fetcher, store: store, cache: cache, ai: ai, policy: policy, logger: logger}
}

// Lookup resolves a barcode: cache, local store, Open Food Facts, then an AI
// estimate when the product is unknown.
func (s *BarcodeService) Lookup(ctx context.Context, userID, code string) (*models.FoodProduct, error) {
	if userID == "" {
		return nil, utils.NewAppError(utils.ErrAuthRequired, nil)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, utils.NewAppError(utils.ErrBarcodeNotProvided, nil)
	}
	if !utils.ValidBarcode(code) {
		return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("barcode %q must be 8-14 digits", code))
	}

	var cached models.FoodProduct
	if s.cache.Get(ctx, code, &cached) {
		return &cached, nil
	}
	if s.store != nil {
		p, err := s.store.FindByBarcode(ctx, code)
		if err != nil {
			s.logger.Warn("product store lookup failed", zap.String("barcode", code), zap.Error(err))
		} else if p != nil {
			s.cache.Set(ctx, code, p)
			return p, nil
		}
	}

	p, err := s.fetcher.FetchProduct(ctx, code)
	if err != nil {
		return nil, logAIError(s.logger, "barcode fetch", utils.NewAppError(utils.ErrBarcodeScanFailed, err))
	}
	if p != nil {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if s.store != nil {
			if err := s.store.Save(ctx, p); err != nil {
				s.logger.Warn("product store save failed", zap.String("barcode", code), zap.Error(err))
			}
		}
		s.cache.Set(ctx, code, p)
		return p, nil
	}

	if s.ai == nil {
		return nil, utils.NewAppError(utils.ErrBarcodeProductNotFound, nil)
	}
	est, err := s.estimate(ctx, code)
	if err != nil {
		logAIError(s.logger, "barcode AI estimation", err)
		return nil, utils.NewAppError(utils.ErrBarcodeProductNotFound, err)
	}
	return est, nil
}

func (s *BarcodeService) estimate(ctx context.Context, code string) (*models.FoodProduct, error) {
	raw, err := callAI(ctx, s.ai, s.policy, fmt.Sprintf(barcodeEstimationPrompt, code))
	if err != nil {
		return nil, err
	}
	parsed := utils.ParseProductEstimate(raw)
	if !parsed.OK {
		return nil, utils.NewAppError(utils.ErrAIParseFailed, errors.New(parsed.Reason))
	}
	e := parsed.Value
	conf := e.Confidence
	return &models.FoodProduct{
		ID:          uuid.NewString(),
		Barcode:     code,
		Name:        e.Name,
		Calories:    e.Calories,
		Protein:     e.Protein,
		Fat:         e.Fat,
		Carb:        e.Carb,
		ServingSize: e.ServingSize,
		Source:      models.SourceAIEstimated,
		Confidence:  &conf,
		CreatedAt:   time.Now(),
	}, nil
}

type ServingNutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carb     float64 `json:"carb"`
}

// CalculateServingNutrition scales per-100 g values to grams. Calories are
// whole numbers, macros have one decimal. grams <= 0 means 100 g.
func CalculateServingNutrition(p *models.FoodProduct, grams float64) ServingNutrition {
	if grams <= 0 {
		grams = 100
	}
	ratio := grams / 100
	return ServingNutrition{
		Calories: math.Round(p.Calories * ratio),
		Protein:  math.Round(p.Protein*ratio*10) / 10,
		Fat:      math.Round(p.Fat*ratio*10) / 10,
		Carb:     math.Round(p.Carb*ratio*10) / 10,
	}
}
