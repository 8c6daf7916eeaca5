package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ashin12345678/pfc-balance-app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Alert types.
const (
	AlertWarning = "warning"
	AlertInfo    = "info"
)

// Pusher delivers a mobile notification.
type Pusher interface {
	PushToUser(ctx context.Context, userID, title, body string, data map[string]string)
}

// AlertBus persists alerts and fans them out to websocket clients and mobile
// push. Every dependency may be nil.
type AlertBus struct {
	db     *gorm.DB
	rt     *RealtimeHub
	push   Pusher
	logger *zap.Logger
}

func NewAlertBus(db *gorm.DB, rt *RealtimeHub, push Pusher, logger *zap.Logger) *AlertBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertBus{db: db, rt: rt, push: push, logger: logger}
}

// Emit never fails the caller; delivery problems are logged.
func (b *AlertBus) Emit(ctx context.Context, userID, typ, message string) *models.Alert {
	if b == nil {
		return nil
	}
	a := &models.Alert{UserID: userID, Type: typ, Message: message, CreatedAt: time.Now()}
	if b.db != nil {
		if err := b.db.WithContext(ctx).Create(a).Error; err != nil {
			b.logger.Warn("persist alert failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	b.rt.Broadcast(userID, EventAlertCreated, map[string]any{"alert": a})

	if b.push != nil {
		b.push.PushToUser(ctx, userID, "PFCバランス", message, map[string]string{
			"type": typ, "alertId": fmt.Sprintf("%d", a.ID),
		})
	}
	return a
}

// ListAlerts returns the newest alerts of userID first.
func (b *AlertBus) ListAlerts(ctx context.Context, userID string, limit int) ([]models.Alert, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []models.Alert
	err := b.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
