package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultMealLimit = 50
	MaxMealLimit     = 100
)

// ParseLimit turns the raw limit query value into 1..MaxMealLimit.
// Missing or malformed values give DefaultMealLimit.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultMealLimit
	}
	return ClampLimit(n)
}

func ClampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxMealLimit {
		return MaxMealLimit
	}
	return n
}

type MealQuery struct {
	DateRange
	Limit int
}

// MealInput is the body of a new meal log.
type MealInput struct {
	MealDate        string   `json:"mealDate"`
	MealType        string   `json:"mealType"`
	InputType       string   `json:"inputType"`
	InputText       string   `json:"inputText"`
	Barcode         string   `json:"barcode"`
	FoodName        string   `json:"foodName"`
	Calories        float64  `json:"calories"`
	ProteinG        float64  `json:"proteinG"`
	FatG            float64  `json:"fatG"`
	CarbG           float64  `json:"carbG"`
	ServingSize     string   `json:"servingSize"`
	AIResponse      string   `json:"aiResponse"`
	ConfidenceScore *float64 `json:"confidenceScore"`
	ImageURL        string   `json:"imageUrl"`
}

// MealPatch is a partial update; nil fields are kept.
type MealPatch struct {
	FoodName    *string  `json:"foodName"`
	Calories    *float64 `json:"calories"`
	ProteinG    *float64 `json:"proteinG"`
	FatG        *float64 `json:"fatG"`
	CarbG       *float64 `json:"carbG"`
	ServingSize *string  `json:"servingSize"`
}

// PhotoUploader stores a meal photo and returns its public URL.
type PhotoUploader interface {
	UploadMealPhoto(ctx context.Context, userID, dataURI string) (string, error)
}

type MealService struct {
	db        *gorm.DB
	summaries *SummaryService
	rt        *RealtimeHub
	photos    PhotoUploader
	logger    *zap.Logger
}

// NewMealService builds the service; summaries, rt and photos may be nil.
func NewMealService(db *gorm.DB, summaries *SummaryService, rt *RealtimeHub, photos PhotoUploader, logger *zap.Logger) *MealService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealService{db: db, summaries: summaries, rt: rt, photos: photos, logger: logger}
}

func validMacro(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 }

// NewMealLog validates in and converts it to a row owned by userID.
func NewMealLog(userID string, in MealInput) (*models.MealLog, error) {
	if !ValidDate(in.MealDate) {
		return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("mealDate %q must be YYYY-MM-DD", in.MealDate))
	}
	if !utils.ValidMealType(in.MealType) {
		return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("mealType %q is invalid", in.MealType))
	}
	mt := utils.SanitizeMealType(in.MealType)
	it := strings.ToLower(strings.TrimSpace(in.InputType))
	if it == "" {
		it = models.InputManual
	}
	switch it {
	case models.InputText, models.InputBarcode, models.InputManual, models.InputOCR:
	default:
		return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("inputType %q is invalid", in.InputType))
	}
	name := strings.TrimSpace(in.FoodName)
	if name == "" {
		return nil, utils.NewAppError(utils.ErrInputRequired, errors.New("foodName is required"))
	}
	for _, v := range []float64{in.Calories, in.ProteinG, in.FatG, in.CarbG} {
		if !validMacro(v) {
			return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("nutrient value %v is invalid", v))
		}
	}
	if c := in.ConfidenceScore; c != nil && (math.IsNaN(*c) || *c < 0 || *c > 1) {
		return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("confidenceScore %v out of range", *c))
	}
	if in.Barcode != "" && !utils.ValidBarcode(in.Barcode) {
		return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("barcode %q must be 8-14 digits", in.Barcode))
	}

	return &models.MealLog{
		ID:              uuid.NewString(),
		UserID:          userID,
		MealDate:        in.MealDate,
		MealType:        string(mt),
		InputType:       it,
		InputText:       strings.TrimSpace(in.InputText),
		Barcode:         in.Barcode,
		FoodName:        name,
		Calories:        in.Calories,
		ProteinG:        in.ProteinG,
		FatG:            in.FatG,
		CarbG:           in.CarbG,
		ServingSize:     strings.TrimSpace(in.ServingSize),
		AIResponse:      in.AIResponse,
		ConfidenceScore: in.ConfidenceScore,
		ImageURL:        in.ImageURL,
	}, nil
}

// ApplyMealPatch validates p and returns the column updates it implies.
func ApplyMealPatch(p MealPatch) (map[string]any, error) {
	upd := map[string]any{}
	if p.FoodName != nil {
		name := strings.TrimSpace(*p.FoodName)
		if name == "" {
			return nil, utils.NewAppError(utils.ErrInputRequired, errors.New("foodName must not be empty"))
		}
		upd["food_name"] = name
	}
	for col, v := range map[string]*float64{"calories": p.Calories, "protein_g": p.ProteinG, "fat_g": p.FatG, "carb_g": p.CarbG} {
		if v == nil {
			continue
		}
		if !validMacro(*v) {
			return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("%s value %v is invalid", col, *v))
		}
		upd[col] = *v
	}
	if p.ServingSize != nil {
		upd["serving_size"] = strings.TrimSpace(*p.ServingSize)
	}
	if len(upd) == 0 {
		return nil, utils.NewAppError(utils.ErrInputRequired, errors.New("no fields to update"))
	}
	return upd, nil
}

func validMealID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("meal id %q is not a UUID", id))
	}
	return nil
}

// List returns the user's meals newest first.
func (s *MealService) List(ctx context.Context, userID string, q MealQuery) ([]models.MealLog, error) {
	if userID == "" {
		return nil, utils.NewAppError(utils.ErrAuthRequired, nil)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit == 0 {
		limit = DefaultMealLimit
	}
	var out []models.MealLog
	err := q.apply(s.db.WithContext(ctx).Where("user_id = ?", userID), "meal_date").
		Order("created_at DESC").
		Limit(ClampLimit(limit)).
		Find(&out).Error
	if err != nil {
		return nil, utils.NewAppError(utils.ErrMealGetFailed, err)
	}
	return out, nil
}

// Recent returns the names and calories of the latest meals, for advice.
func (s *MealService) Recent(ctx context.Context, userID string, limit int) ([]RecentMeal, error) {
	var rows []models.MealLog
	err := s.db.WithContext(ctx).
		Select("food_name", "calories").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(ClampLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, utils.NewAppError(utils.ErrMealGetFailed, err)
	}
	out := make([]RecentMeal, 0, len(rows))
	for _, r := range rows {
		out = append(out, RecentMeal{Name: r.FoodName, Calories: r.Calories})
	}
	return out, nil
}

func (s *MealService) Create(ctx context.Context, userID string, in MealInput) (*models.MealLog, error) {
	if userID == "" {
		return nil, utils.NewAppError(utils.ErrAuthRequired, nil)
	}
	m, err := NewMealLog(userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, utils.NewAppError(utils.ErrMealCreateFailed, err)
	}
	s.afterWrite(ctx, userID, m.MealDate, EventMealLogged, m)
	return m, nil
}

func (s *MealService) Update(ctx context.Context, userID, id string, p MealPatch) (*models.MealLog, error) {
	if userID == "" {
		return nil, utils.NewAppError(utils.ErrAuthRequired, nil)
	}
	if err := validMealID(id); err != nil {
		return nil, err
	}
	upd, err := ApplyMealPatch(p)
	if err != nil {
		return nil, err
	}

	var m models.MealLog
	db := s.db.WithContext(ctx)
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, utils.NewAppError(utils.ErrMealUpdateFailed, err)
	}
	if err := db.Model(&m).Updates(upd).Error; err != nil {
		return nil, utils.NewAppError(utils.ErrMealUpdateFailed, err)
	}
	s.afterWrite(ctx, userID, m.MealDate, EventMealLogged, &m)
	return &m, nil
}

func (s *MealService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return utils.NewAppError(utils.ErrAuthRequired, nil)
	}
	if err := validMealID(id); err != nil {
		return err
	}
	var m models.MealLog
	db := s.db.WithContext(ctx)
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return utils.NewAppError(utils.ErrMealDeleteFailed, err)
	}
	if err := db.Delete(&m).Error; err != nil {
		return utils.NewAppError(utils.ErrMealDeleteFailed, err)
	}
	s.afterWrite(ctx, userID, m.MealDate, EventMealDeleted, &m)
	return nil
}

// AttachPhoto uploads a data-URI photo and stores its URL on the meal.
func (s *MealService) AttachPhoto(ctx context.Context, userID, id, dataURI string) (*models.MealLog, error) {
	if userID == "" {
		return nil, utils.NewAppError(utils.ErrAuthRequired, nil)
	}
	if err := validMealID(id); err != nil {
		return nil, err
	}
	if s.photos == nil {
		return nil, utils.NewAppError(utils.ErrServer, errors.New("photo storage not configured"))
	}
	var m models.MealLog
	db := s.db.WithContext(ctx)
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, utils.NewAppError(utils.ErrMealUpdateFailed, err)
	}
	url, err := s.photos.UploadMealPhoto(ctx, userID, dataURI)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidDataURI) {
			return nil, utils.NewAppError(utils.ErrInputInvalid, err)
		}
		return nil, utils.NewAppError(utils.ErrMealUpdateFailed, err)
	}
	if err := db.Model(&m).Update("image_url", url).Error; err != nil {
		return nil, utils.NewAppError(utils.ErrMealUpdateFailed, err)
	}
	return &m, nil
}

// afterWrite refreshes the day's summary and notifies websocket clients.
// Neither step fails the write.
func (s *MealService) afterWrite(ctx context.Context, userID, date, event string, m *models.MealLog) {
	payload := map[string]any{"meal": m}
	if s.summaries != nil {
		sum, err := s.summaries.Recompute(ctx, userID, date)
		if err != nil {
			s.logger.Warn("summary recompute failed", zap.String("user_id", userID), zap.String("date", date), zap.Error(err))
		} else {
			payload["summary"] = sum
		}
	}
	s.rt.Broadcast(userID, event, payload)
}
