package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"hirepoint_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AccessTokenTTL - срок жизни access-токена
	AccessTokenTTL = 7*time.Hour + time.Second
	// RefreshTokenTTL - срок жизни refresh-токена
	RefreshTokenTTL = 24 * time.Hour
	// ForgotPasswordTokenTTL - срок жизни токена сброса пароля
	ForgotPasswordTokenTTL = 30 * time.Minute
)

var (
	// ErrTokenInvalid возвращается при любой ошибке подписи, структуры или срока
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims - полезная нагрузка подписанных токенов.
// UserID лежит в Subject; у токена сброса пароля Subject пуст.
type Claims struct {
	Role     string `json:"role,omitempty"`
	Email    string `json:"email"`
	UserName string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer создает и проверяет подписанные токены.
// Ключ передается явно при конструировании, а не берется из глобального
// конфига; его отсутствие - фатальная ошибка конфигурации на старте.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret}
}

// GenerateAccessToken подписывает access-токен для пользователя.
// jti делает каждый выданный токен уникальным: iat/exp имеют секундную
// точность, и без jti два входа в одну секунду дали бы одинаковые
// токены - повторный вход не заменил бы сохраненный токен.
func (i *TokenIssuer) GenerateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:     string(user.Role),
		Email:    user.Email,
		UserName: user.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(i.secret)
}

// GenerateForgotPasswordToken подписывает токен сброса пароля.
// В claims только email и username - токен не дает доступ к аккаунту
func (i *TokenIssuer) GenerateForgotPasswordToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:    user.Email,
		UserName: user.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ForgotPasswordTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(i.secret)
}

// ParseToken проверяет подпись, структуру и срок действия токена.
// Issuer/audience не проверяются (однотенантное развертывание).
func (i *TokenIssuer) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return i.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	// Срок проверяем сами, без clock skew
	if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// NewRefreshToken генерирует непрозрачный refresh-токен:
// 64 криптослучайных байта в base64, срок жизни 24 часа
func NewRefreshToken(userID string) (*models.RefreshToken, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}

	now := time.Now()
	return &models.RefreshToken{
		BaseModel: models.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     base64.StdEncoding.EncodeToString(buf),
		ExpiresAt: now.Add(RefreshTokenTTL),
	}, nil
}
