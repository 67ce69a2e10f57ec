package repositories

import (
	"context"
	"errors"
	"time"

	"hirepoint_backend/internal/models"

	"gorm.io/gorm"
)

// UserRepository определяет интерфейс для операций с агрегатом пользователя.
// Агрегат включает принадлежащие пользователю refresh- и forgot-password-токены.
type UserRepository interface {
	// Create создает нового пользователя
	Create(db *gorm.DB, user *models.User) error

	// FindByID находит пользователя по ID вместе с его токенами
	FindByID(db *gorm.DB, id string) (*models.User, error)

	// FindByEmail находит пользователя по email
	FindByEmail(db *gorm.DB, email string) (*models.User, error)

	// FindByUserName находит пользователя по имени
	FindByUserName(db *gorm.DB, userName string) (*models.User, error)

	// List возвращает всех пользователей
	List(db *gorm.DB) ([]models.User, error)

	// Update сохраняет поля пользователя (без принадлежащих токенов)
	Update(db *gorm.DB, user *models.User) error

	// Delete удаляет пользователя вместе с его токенами
	Delete(db *gorm.DB, id string) error

	// ReplaceRefreshToken атомарно заменяет refresh-токен пользователя
	ReplaceRefreshToken(db *gorm.DB, userID string, token *models.RefreshToken) error

	// DeleteRefreshTokenByUserID удаляет refresh-токен пользователя (logout)
	DeleteRefreshTokenByUserID(db *gorm.DB, userID string) error

	// SaveForgotPasswordToken создает или заменяет токен сброса пароля
	SaveForgotPasswordToken(db *gorm.DB, token *models.ForgotPasswordToken) error

	// UpdateForgotPasswordToken сохраняет изменения существующего токена сброса
	UpdateForgotPasswordToken(db *gorm.DB, token *models.ForgotPasswordToken) error

	// CleanExpiredTokens удаляет все истекшие refresh- и forgot-password-токены
	CleanExpiredTokens(db *gorm.DB) (int64, error)
}

type userRepository struct {
	// queryTimeout - таймаут одного вызова хранилища
	queryTimeout time.Duration
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(queryTimeout time.Duration) UserRepository {
	return &userRepository{queryTimeout: queryTimeout}
}

func (r *userRepository) withTimeout(db *gorm.DB) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout)
	return db.WithContext(ctx), cancel
}

// Create создает нового пользователя
func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	db, cancel := r.withTimeout(db)
	defer cancel()
	return classify(db.Create(user).Error)
}

// FindByID находит пользователя по ID вместе с его токенами
func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	db, cancel := r.withTimeout(db)
	defer cancel()

	var user models.User
	err := db.Preload("RefreshToken").Preload("ForgotPasswordToken").
		Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, classify(err)
	}
	return &user, nil
}

// FindByEmail находит пользователя по email
func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	return r.findOne(db, "email = ?", email)
}

// FindByUserName находит пользователя по имени
func (r *userRepository) FindByUserName(db *gorm.DB, userName string) (*models.User, error) {
	return r.findOne(db, "user_name = ?", userName)
}

func (r *userRepository) findOne(db *gorm.DB, query string, arg interface{}) (*models.User, error) {
	db, cancel := r.withTimeout(db)
	defer cancel()

	var user models.User
	err := db.Preload("RefreshToken").Preload("ForgotPasswordToken").
		Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, classify(err)
	}
	return &user, nil
}

// List возвращает всех пользователей
func (r *userRepository) List(db *gorm.DB) ([]models.User, error) {
	db, cancel := r.withTimeout(db)
	defer cancel()

	var users []models.User
	if err := db.Order("created_at").Find(&users).Error; err != nil {
		return nil, classify(err)
	}
	return users, nil
}

// Update сохраняет поля пользователя (без принадлежащих токенов)
func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	db, cancel := r.withTimeout(db)
	defer cancel()

	// Select с полным списком колонок, чтобы пустой AccessToken
	// тоже попадал в UPDATE (нулевые значения gorm иначе пропускает)
	err := db.Model(user).
		Select("UserName", "Email", "PasswordHash", "Role", "AccessToken", "UpdatedAt").
		Updates(user).Error
	return classify(err)
}

// Delete удаляет пользователя вместе с его токенами
func (r *userRepository) Delete(db *gorm.DB, id string) error {
	db, cancel := r.withTimeout(db)
	defer cancel()

	return classify(db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ForgotPasswordToken{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	}))
}

// ReplaceRefreshToken атомарно заменяет refresh-токен пользователя
func (r *userRepository) ReplaceRefreshToken(db *gorm.DB, userID string, token *models.RefreshToken) error {
	db, cancel := r.withTimeout(db)
	defer cancel()

	return classify(db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	}))
}

// DeleteRefreshTokenByUserID удаляет refresh-токен пользователя (logout)
func (r *userRepository) DeleteRefreshTokenByUserID(db *gorm.DB, userID string) error {
	db, cancel := r.withTimeout(db)
	defer cancel()
	return classify(db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error)
}

// SaveForgotPasswordToken создает или заменяет токен сброса пароля
func (r *userRepository) SaveForgotPasswordToken(db *gorm.DB, token *models.ForgotPasswordToken) error {
	db, cancel := r.withTimeout(db)
	defer cancel()

	return classify(db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&models.ForgotPasswordToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	}))
}

// UpdateForgotPasswordToken сохраняет изменения существующего токена сброса
func (r *userRepository) UpdateForgotPasswordToken(db *gorm.DB, token *models.ForgotPasswordToken) error {
	db, cancel := r.withTimeout(db)
	defer cancel()
	return classify(db.Model(token).Select("IsValidated", "UpdatedAt").Updates(token).Error)
}

// CleanExpiredTokens удаляет все истекшие refresh- и forgot-password-токены
func (r *userRepository) CleanExpiredTokens(db *gorm.DB) (int64, error) {
	db, cancel := r.withTimeout(db)
	defer cancel()

	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Where("expires_at < ?", now).Delete(&models.RefreshToken{})
		if result.Error != nil {
			return result.Error
		}
		removed += result.RowsAffected

		result = tx.Where("expires_at < ?", now).Delete(&models.ForgotPasswordToken{})
		if result.Error != nil {
			return result.Error
		}
		removed += result.RowsAffected
		return nil
	})
	return removed, classify(err)
}
