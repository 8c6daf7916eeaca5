package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DateLayout is the wire and storage format of calendar days.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a real YYYY-MM-DD date.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DateRange is either a single Date or StartDate..EndDate (inclusive).
type DateRange struct {
	Date      string
	StartDate string
	EndDate   string
}

// Validate checks every non-empty date and the range order.
func (r DateRange) Validate() error {
	for _, d := range []string{r.Date, r.StartDate, r.EndDate} {
		if d != "" && !ValidDate(d) {
			return utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("date %q must be YYYY-MM-DD", d))
		}
	}
	if r.StartDate != "" && r.EndDate != "" && r.StartDate > r.EndDate {
		return utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("startDate %s is after endDate %s", r.StartDate, r.EndDate))
	}
	return nil
}

func (r DateRange) apply(q *gorm.DB, column string) *gorm.DB {
	if r.Date != "" {
		return q.Where(column+" = ?", r.Date)
	}
	if r.StartDate != "" {
		q = q.Where(column+" >= ?", r.StartDate)
	}
	if r.EndDate != "" {
		q = q.Where(column+" <= ?", r.EndDate)
	}
	return q
}

// DigestSender mails stored advice.
type DigestSender interface {
	SendAdviceDigest(ctx context.Context, to, date string, advice utils.AdviceResult) error
}

type SummaryService struct {
	db       *gorm.DB
	profiles *ProfileService
	alerts   *AlertBus
	mailer   DigestSender
	logger   *zap.Logger
}

// NewSummaryService builds the service; alerts and mailer may be nil.
func NewSummaryService(db *gorm.DB, profiles *ProfileService, alerts *AlertBus, mailer DigestSender, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{db: db, profiles: profiles, alerts: alerts, mailer: mailer, logger: logger}
}

// BuildDailySummary totals meals and, when targets are known, fills the
// target snapshot and achievement percentages.
func BuildDailySummary(userID, date string, meals []models.MealLog, targets *utils.NutritionTargets) models.DailySummary {
	s := models.DailySummary{UserID: userID, SummaryDate: date, MealCount: len(meals)}
	for _, m := range meals {
		s.TotalCalories += m.Calories
		s.TotalProteinG += m.ProteinG
		s.TotalFatG += m.FatG
		s.TotalCarbG += m.CarbG
	}
	s.TotalCalories = round1(s.TotalCalories)
	s.TotalProteinG = round1(s.TotalProteinG)
	s.TotalFatG = round1(s.TotalFatG)
	s.TotalCarbG = round1(s.TotalCarbG)

	if targets == nil || targets.TargetCalories <= 0 {
		return s
	}
	ptr := func(v float64) *float64 { return &v }
	s.TargetCalories = ptr(targets.TargetCalories)
	s.TargetProteinG = ptr(targets.TargetProtein)
	s.TargetFatG = ptr(targets.TargetFat)
	s.TargetCarbG = ptr(targets.TargetCarb)
	s.CalorieAchievement = ptr(utils.CalculateAchievement(s.TotalCalories, targets.TargetCalories))
	s.ProteinAchievement = ptr(utils.CalculateAchievement(s.TotalProteinG, targets.TargetProtein))
	s.FatAchievement = ptr(utils.CalculateAchievement(s.TotalFatG, targets.TargetFat))
	s.CarbAchievement = ptr(utils.CalculateAchievement(s.TotalCarbG, targets.TargetCarb))
	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func calorieOver(s *models.DailySummary) bool {
	return s != nil && s.CalorieAchievement != nil && utils.EvaluatePFCStatus(*s.CalorieAchievement) == utils.StatusOver
}

// Recompute rebuilds the summary of date from its meal logs and upserts it.
// An over-target alert is emitted when calories cross into "over".
func (s *SummaryService) Recompute(ctx context.Context, userID, date string) (*models.DailySummary, error) {
	if !ValidDate(date) {
		return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("date %q must be YYYY-MM-DD", date))
	}
	db := s.db.WithContext(ctx)

	var meals []models.MealLog
	if err := db.Where("user_id = ? AND meal_date = ?", userID, date).Find(&meals).Error; err != nil {
		return nil, utils.NewAppError(utils.ErrSummaryUpdateFailed, err)
	}

	var targets *utils.NutritionTargets
	if s.profiles != nil {
		if t, err := s.profiles.Targets(ctx, userID); err == nil {
			targets = &t
		} else {
			s.logger.Debug("summary without targets", zap.String("user_id", userID), zap.Error(err))
		}
	}
	next := BuildDailySummary(userID, date, meals, targets)

	var existing models.DailySummary
	err := db.Where("user_id = ? AND summary_date = ?", userID, date).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		next.ID = uuid.NewString()
		if err := db.Create(&next).Error; err != nil {
			return nil, utils.NewAppError(utils.ErrSummaryUpdateFailed, err)
		}
	case err != nil:
		return nil, utils.NewAppError(utils.ErrSummaryUpdateFailed, err)
	default:
		wasOver := calorieOver(&existing)
		// map form so zero totals and cleared achievements are written
		err := db.Model(&existing).Updates(map[string]any{
			"total_calories":      next.TotalCalories,
			"total_protein_g":     next.TotalProteinG,
			"total_fat_g":         next.TotalFatG,
			"total_carb_g":        next.TotalCarbG,
			"meal_count":          next.MealCount,
			"calorie_achievement": next.CalorieAchievement,
			"protein_achievement": next.ProteinAchievement,
			"fat_achievement":     next.FatAchievement,
			"carb_achievement":    next.CarbAchievement,
			"target_calories":     next.TargetCalories,
			"target_protein_g":    next.TargetProteinG,
			"target_fat_g":        next.TargetFatG,
			"target_carb_g":       next.TargetCarbG,
		}).Error
		if err != nil {
			return nil, utils.NewAppError(utils.ErrSummaryUpdateFailed, err)
		}
		next.ID = existing.ID
		next.AIAdvice = existing.AIAdvice
		next.CreatedAt = existing.CreatedAt
		if wasOver {
			return &next, nil
		}
	}

	if calorieOver(&next) {
		s.alerts.Emit(ctx, userID, AlertWarning,
			fmt.Sprintf("%s の摂取カロリーが目標の%.0f%%に達しました", date, *next.CalorieAchievement))
	}
	return &next, nil
}

// List returns summaries newest first.
func (s *SummaryService) List(ctx context.Context, userID string, r DateRange) ([]models.DailySummary, error) {
	if userID == "" {
		return nil, utils.NewAppError(utils.ErrAuthRequired, nil)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	q := r.apply(s.db.WithContext(ctx).Where("user_id = ?", userID), "summary_date")
	var out []models.DailySummary
	if err := q.Order("summary_date DESC").Find(&out).Error; err != nil {
		return nil, utils.NewAppError(utils.ErrSummaryGetFailed, err)
	}
	return out, nil
}

// SaveAdvice stores advice on the summary of date, creating the summary from
// the day's meals when it does not exist yet.
func (s *SummaryService) SaveAdvice(ctx context.Context, userID, date string, advice utils.AdviceResult) (*models.DailySummary, error) {
	if userID == "" {
		return nil, utils.NewAppError(utils.ErrAuthRequired, nil)
	}
	if !ValidDate(date) {
		return nil, utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("date %q must be YYYY-MM-DD", date))
	}
	raw, err := json.Marshal(advice)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrSummaryUpdateFailed, err)
	}

	sum, err := s.find(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if sum == nil {
		if sum, err = s.Recompute(ctx, userID, date); err != nil {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Model(&models.DailySummary{}).
		Where("id = ?", sum.ID).
		Update("ai_advice", string(raw)).Error; err != nil {
		return nil, utils.NewAppError(utils.ErrSummaryUpdateFailed, err)
	}
	sum.AIAdvice = string(raw)
	return sum, nil
}

// EmailAdvice mails the advice stored for date to the user's address.
func (s *SummaryService) EmailAdvice(ctx context.Context, userID, date string) error {
	if s.mailer == nil {
		return utils.NewAppError(utils.ErrServer, errors.New("mailer not configured"))
	}
	if !ValidDate(date) {
		return utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("date %q must be YYYY-MM-DD", date))
	}
	sum, err := s.find(ctx, userID, date)
	if err != nil {
		return err
	}
	if sum == nil || sum.AIAdvice == "" {
		return utils.NewAppError(utils.ErrInputRequired, fmt.Errorf("no advice stored for %s", date))
	}
	var advice utils.AdviceResult
	if err := json.Unmarshal([]byte(sum.AIAdvice), &advice); err != nil {
		return utils.NewAppError(utils.ErrSummaryGetFailed, err)
	}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.mailer.SendAdviceDigest(ctx, p.Email, date, advice); err != nil {
		s.logger.Error("advice digest failed", zap.String("user_id", userID), zap.Error(err))
		return utils.NewAppError(utils.ErrServer, err)
	}
	return nil
}

func (s *SummaryService) find(ctx context.Context, userID, date string) (*models.DailySummary, error) {
	var sum models.DailySummary
	err := s.db.WithContext(ctx).Where("user_id = ? AND summary_date = ?", userID, date).First(&sum).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewAppError(utils.ErrSummaryGetFailed, err)
	}
	return &sum, nil
}
