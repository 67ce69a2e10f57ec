package workers

import (
	"context"
	"time"

	"hirepoint_backend/internal/logger"
	"hirepoint_backend/internal/repositories"

	"gorm.io/gorm"
)

// TokenWorker периодически удаляет истекшие refresh- и
// forgot-password-токены. Проверка срока при использовании токена
// выполняется всегда, так что уборка чисто гигиеническая.
type TokenWorker struct {
	db       *gorm.DB
	users    repositories.UserRepository
	interval time.Duration
}

func NewTokenWorker(db *gorm.DB, users repositories.UserRepository) *TokenWorker {
	return &TokenWorker{
		db:       db,
		users:    users,
		interval: time.Hour,
	}
}

// Start запускает фоновую уборку токенов
func (w *TokenWorker) Start(ctx context.Context) {
	go w.cleanExpiredTokens(ctx)
}

func (w *TokenWorker) cleanExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("token worker stopped")
			return
		case <-ticker.C:
			removed, err := w.users.CleanExpiredTokens(w.db)
			if err != nil {
				logger.WithError(err).Error("failed to clean expired tokens")
			} else if removed > 0 {
				logger.Info("expired tokens removed", "count", removed)
			}
		}
	}
}
