package dto

import "time"

// RegisterRequest - тело запроса регистрации нового пользователя
type RegisterRequest struct {
	UserName string `json:"userName" binding:"required" validate:"required,username"`
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required,userpassword"`
	Role     string `json:"role" binding:"required" validate:"required,is-user-role"`
}

// LoginRequest - тело запроса входа. Идентификатор - email или имя
// пользователя; хотя бы одно из двух полей должно быть заполнено.
type LoginRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

// UpdateUserRequest - тело запроса обновления аккаунта.
// Все три поля обязательны: операция перезаписывает учетные данные целиком.
type UpdateUserRequest struct {
	UserName string `json:"userName" binding:"required" validate:"required,username"`
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required,userpassword"`
}

// ForgotPasswordRequest - тело запроса начала сброса пароля.
// Пользователь разрешается сначала по имени, затем по email.
type ForgotPasswordRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// ResetPasswordRequest - тело запроса завершения сброса пароля
type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required" validate:"required,userpassword"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password" validate:"required,eqfield=Password"`
}

// UserView - публичное представление пользователя (без хэша пароля и токенов)
type UserView struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoggedInUserView - представление пользователя с активной сессией.
// Refresh-токен сюда не входит: он уезжает только в http-only cookie.
type LoggedInUserView struct {
	UserView
	AccessToken string `json:"accessToken"`
}

// EmptyView - пустой результат операций без полезной нагрузки.
// Наличие Data отличает успешное завершение от "нужна аутентификация".
type EmptyView struct{}

// ResetTokenView - результат подтверждения сброса: одноразовый access-токен,
// действительный только для завершения сброса пароля
type ResetTokenView struct {
	AccessToken string `json:"accessToken"`
}
