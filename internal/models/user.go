package models

import "time"

type User struct {
	BaseModel
	UserName     string   `gorm:"uniqueIndex;not null"`
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);not null"`

	// AccessToken - единственный источник истины для "жив ли bearer-токен".
	// Структурно валидный подписанный токен обязан еще и побайтно совпадать
	// с этим полем; пустая строка означает "разлогинен".
	AccessToken string `gorm:"default:''"`

	// Relations (User владеет своими токенами, удаление каскадное)
	RefreshToken        *RefreshToken        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ForgotPasswordToken *ForgotPasswordToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IsLoggedIn - есть ли у пользователя активная сессия
func (u *User) IsLoggedIn() bool {
	return u.AccessToken != ""
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;uniqueIndex"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}

// Expired - истек ли срок жизни токена
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type ForgotPasswordToken struct {
	BaseModel
	UserID    string    `gorm:"not null;uniqueIndex"`
	Token     string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	// IsValidated переключается ровно один раз шагом подтверждения;
	// подтвержденный токен для повторного подтверждения не годится
	IsValidated bool `gorm:"default:false"`
}

// UsableForConfirmation - можно ли подтвердить сброс этим токеном
func (t *ForgotPasswordToken) UsableForConfirmation(now time.Time) bool {
	return !t.IsValidated && now.Before(t.ExpiresAt)
}
