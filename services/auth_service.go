package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(db *gorm.DB, jwtSecret string, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{db: db, jwtSecret: jwtSecret, logger: logger}
}

// NormalizeEmail lowercases a syntactically valid address.
func NormalizeEmail(raw string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return "", utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("invalid email %q", raw))
	}
	return e, nil
}

// Register creates a profile with default body settings and returns it with
// a session token.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*models.Profile, string, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	if len(password) < MinPasswordLength {
		return nil, "", utils.NewAppError(utils.ErrInputInvalid, fmt.Errorf("password must be at least %d characters", MinPasswordLength))
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", e).Count(&n).Error; err != nil {
		return nil, "", utils.NewAppError(utils.ErrServer, err)
	}
	if n > 0 {
		return nil, "", utils.NewAppError(utils.ErrInputInvalid, errors.New("email already registered"))
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", utils.NewAppError(utils.ErrServer, err)
	}
	p := &models.Profile{
		ID:                 uuid.NewString(),
		Email:              e,
		PasswordHash:       hash,
		DisplayName:        strings.TrimSpace(displayName),
		Gender:             string(utils.SexMale),
		ActivityLevel:      1.55,
		Goal:               string(utils.GoalMaintain),
		TargetProteinRatio: utils.DefaultProteinRatio,
		TargetFatRatio:     utils.DefaultFatRatio,
		TargetCarbRatio:    utils.DefaultCarbRatio,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, "", utils.NewAppError(utils.ErrServer, err)
	}

	token, err := utils.GenerateJWT(p.ID, p.Email, s.jwtSecret)
	if err != nil {
		return nil, "", utils.NewAppError(utils.ErrServer, err)
	}
	s.logger.Info("user registered", zap.String("user_id", p.ID))
	return p, token, nil
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	var p models.Profile
	err := s.db.WithContext(ctx).Where("email = ?", e).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", utils.NewAppError(utils.ErrAuthRequired, errors.New("user not found"))
	}
	if err != nil {
		return "", utils.NewAppError(utils.ErrServer, err)
	}
	if !utils.CheckPasswordHash(password, p.PasswordHash) {
		return "", utils.NewAppError(utils.ErrAuthRequired, errors.New("incorrect password"))
	}
	token, err := utils.GenerateJWT(p.ID, p.Email, s.jwtSecret)
	if err != nil {
		return "", utils.NewAppError(utils.ErrServer, err)
	}
	return token, nil
}
