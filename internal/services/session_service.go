package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"hirepoint_backend/internal/auth"
	"hirepoint_backend/internal/email"
	"hirepoint_backend/internal/logger"
	"hirepoint_backend/internal/models"
	"hirepoint_backend/internal/repositories"
	"hirepoint_backend/internal/services/dto"
	"hirepoint_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// bearerPrefix - обязательный префикс заголовка Authorization
const bearerPrefix = "Bearer "

// msgAuthRequired - сообщение отказа аутентификации. Намеренно не
// уточняет, что именно не так с токеном.
const msgAuthRequired = "Authentication required."

// CookieSink - приемник cookie ответа. Предоставляется HTTP-слоем,
// чтобы сервис мог управлять refresh-cookie, не зная про gin.
type CookieSink interface {
	// SetRefreshToken выставляет http-only cookie с refresh-токеном
	SetRefreshToken(token string, expiresAt time.Time)
	// ClearRefreshToken удаляет refresh-cookie
	ClearRefreshToken()
}

// TokenAuthenticator - проверка bearer-токена. Отдельный интерфейс,
// чтобы другие сервисы зависели только от проверки, а не от всего
// сессионного сервиса.
type TokenAuthenticator interface {
	// TokenCheck проверяет заголовок Authorization: подпись, срок и
	// побайтное совпадение с токеном, сохраненным за пользователем.
	// Возвращает auth.ErrTokenInvalid при любом отказе токена.
	TokenCheck(db *gorm.DB, authorization string) (*models.User, error)
}

// SessionService управляет учетными записями и их сессиями
type SessionService interface {
	TokenAuthenticator

	// Register создает новую учетную запись
	Register(db *gorm.DB, req *dto.RegisterRequest) *Result[dto.UserView]

	// GetUsers возвращает всех пользователей
	GetUsers(db *gorm.DB) *Result[[]dto.UserView]

	// Login открывает сессию: выдает access-токен и refresh-cookie
	Login(db *gorm.DB, req *dto.LoginRequest, cookies CookieSink) *Result[dto.LoggedInUserView]

	// Refresh выдает новую пару токенов по действующему refresh-cookie
	Refresh(db *gorm.DB, authorization, refreshCookie string, cookies CookieSink) *Result[dto.LoggedInUserView]

	// Logout закрывает сессию: стирает access-токен и refresh-токен
	Logout(db *gorm.DB, authorization string, cookies CookieSink) *Result[dto.EmptyView]

	// UpdateUser перезаписывает учетные данные и принудительно
	// закрывает сессию
	UpdateUser(db *gorm.DB, authorization string, req *dto.UpdateUserRequest, cookies CookieSink) *Result[dto.UserView]

	// DeleteUser удаляет учетную запись вместе с токенами
	DeleteUser(db *gorm.DB, authorization string, cookies CookieSink) *Result[dto.EmptyView]

	// ForgotPassword начинает сброс пароля: сохраняет одноразовый токен
	// и отправляет ссылку подтверждения
	ForgotPassword(db *gorm.DB, req *dto.ForgotPasswordRequest) *Result[dto.EmptyView]

	// ResetPasswordConfirmation подтверждает сброс по токену из ссылки.
	// Любой непригодный токен дает неоднозначный пустой успех.
	ResetPasswordConfirmation(db *gorm.DB, token string) *Result[dto.ResetTokenView]

	// ResetPassword завершает сброс: устанавливает новый пароль и
	// оставляет пользователя разлогиненным
	ResetPassword(db *gorm.DB, authorization string, req *dto.ResetPasswordRequest) *Result[dto.EmptyView]
}

type sessionService struct {
	users   repositories.UserRepository
	issuer  *auth.TokenIssuer
	mail    email.Provider
	baseURL string
}

// NewSessionService создает новый экземпляр SessionService.
// Все зависимости передаются явно.
func NewSessionService(users repositories.UserRepository, issuer *auth.TokenIssuer, mail email.Provider, baseURL string) SessionService {
	return &sessionService{
		users:   users,
		issuer:  issuer,
		mail:    mail,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// authFail переводит ошибку проверки токена в результат: отказ токена
// дает "нужна аутентификация" (HTTP-слой отвечает 401), ошибка
// хранилища - обычный отказ.
func authFail[T any](err error) *Result[T] {
	if errors.Is(err, auth.ErrTokenInvalid) {
		return AuthRequired[T](msgAuthRequired)
	}
	return failStore[T](err)
}

// TokenCheck проверяет заголовок Authorization. Структурно валидного
// подписанного токена недостаточно: он обязан побайтно совпадать с
// токеном, сохраненным за пользователем, и тот не должен быть пуст.
func (s *sessionService) TokenCheck(db *gorm.DB, authorization string) (*models.User, error) {
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return nil, auth.ErrTokenInvalid
	}
	raw := strings.TrimPrefix(authorization, bearerPrefix)
	if raw == "" {
		return nil, auth.ErrTokenInvalid
	}

	claims, err := s.issuer.ParseToken(raw)
	if err != nil {
		return nil, auth.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, auth.ErrTokenInvalid
	}

	user, err := s.users.FindByID(db, claims.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, auth.ErrTokenInvalid
		}
		return nil, err
	}

	if user.AccessToken == "" || user.AccessToken != raw {
		return nil, auth.ErrTokenInvalid
	}
	return user, nil
}

// Register создает новую учетную запись
func (s *sessionService) Register(db *gorm.DB, req *dto.RegisterRequest) *Result[dto.UserView] {
	if _, err := s.users.FindByEmail(db, req.Email); err == nil {
		return Rejected[dto.UserView](apperrors.ErrUnavailableEmail)
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return failStore[dto.UserView](err)
	}
	if _, err := s.users.FindByUserName(db, req.UserName); err == nil {
		return Rejected[dto.UserView](apperrors.ErrUnavailableUserName)
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return failStore[dto.UserView](err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Rejected[dto.UserView](apperrors.InternalError(err))
	}

	now := time.Now()
	user := &models.User{
		BaseModel: models.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRole(req.Role),
	}
	if err := s.users.Create(db, user); err != nil {
		return failStore[dto.UserView](err)
	}

	// Контрольное чтение: запись должна быть видна и совпадать
	stored, err := s.users.FindByEmail(db, req.Email)
	if err != nil {
		return failStore[dto.UserView](err)
	}
	if stored.UserName != req.UserName || stored.Role != user.Role ||
		!auth.CheckPasswordHash(req.Password, stored.PasswordHash) {
		return Rejected[dto.UserView](apperrors.ErrPersistenceFailed("user", "Registered user was not persisted correctly."))
	}

	logger.Info("user registered", "user_id", stored.ID, "role", string(stored.Role))
	return Ok(userView(stored), "User registered successfully.")
}

// GetUsers возвращает всех пользователей
func (s *sessionService) GetUsers(db *gorm.DB) *Result[[]dto.UserView] {
	users, err := s.users.List(db)
	if err != nil {
		return failStore[[]dto.UserView](err)
	}

	views := make([]dto.UserView, 0, len(users))
	for i := range users {
		views = append(views, userView(&users[i]))
	}
	return Ok(views, "Users retrieved successfully.")
}

// Login открывает сессию. Идентификатор - имя пользователя или email.
func (s *sessionService) Login(db *gorm.DB, req *dto.LoginRequest, cookies CookieSink) *Result[dto.LoggedInUserView] {
	user, err := s.findByIdentifier(db, req.UserName, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return Rejected[dto.LoggedInUserView](apperrors.ErrNotFound(err, "user", "User not found."))
		}
		return failStore[dto.LoggedInUserView](err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Warn("login rejected: wrong password", "user_id", user.ID)
		return Rejected[dto.LoggedInUserView](apperrors.NewUnauthorizedError("Wrong password."))
	}

	accessToken, err := s.issuer.GenerateAccessToken(user)
	if err != nil {
		return Rejected[dto.LoggedInUserView](apperrors.InternalError(err))
	}
	refresh, err := auth.NewRefreshToken(user.ID)
	if err != nil {
		return Rejected[dto.LoggedInUserView](apperrors.InternalError(err))
	}

	user.AccessToken = accessToken
	user.UpdatedAt = time.Now()
	if err := s.users.Update(db, user); err != nil {
		return failStore[dto.LoggedInUserView](err)
	}
	if err := s.users.ReplaceRefreshToken(db, user.ID, refresh); err != nil {
		return failStore[dto.LoggedInUserView](err)
	}

	// Контрольное чтение: оба токена должны быть видны ровно такими,
	// какими были записаны
	stored, err := s.users.FindByID(db, user.ID)
	if err != nil {
		return failStore[dto.LoggedInUserView](err)
	}
	if stored.AccessToken != accessToken ||
		stored.RefreshToken == nil ||
		stored.RefreshToken.Token != refresh.Token ||
		stored.RefreshToken.UserID != user.ID {
		return Rejected[dto.LoggedInUserView](apperrors.ErrPersistenceFailed("user", "Session state was not persisted."))
	}

	cookies.SetRefreshToken(refresh.Token, refresh.ExpiresAt)
	logger.Info("user logged in", "user_id", user.ID)
	return Ok(loggedInView(stored), "User logged in successfully.")
}

// Refresh выдает новую пару токенов по действующему refresh-cookie.
// Старый refresh-токен ротируется: украденная cookie перестает работать
// после первого же легального обновления.
func (s *sessionService) Refresh(db *gorm.DB, authorization, refreshCookie string, cookies CookieSink) *Result[dto.LoggedInUserView] {
	user, err := s.TokenCheck(db, authorization)
	if err != nil {
		return authFail[dto.LoggedInUserView](err)
	}

	if refreshCookie == "" || user.RefreshToken == nil ||
		user.RefreshToken.Token != refreshCookie {
		return Rejected[dto.LoggedInUserView](apperrors.NewUnauthorizedError("Invalid refresh token."))
	}
	if user.RefreshToken.Expired(time.Now()) {
		return Rejected[dto.LoggedInUserView](apperrors.NewUnauthorizedError("Refresh token has expired."))
	}

	accessToken, err := s.issuer.GenerateAccessToken(user)
	if err != nil {
		return Rejected[dto.LoggedInUserView](apperrors.InternalError(err))
	}
	refresh, err := auth.NewRefreshToken(user.ID)
	if err != nil {
		return Rejected[dto.LoggedInUserView](apperrors.InternalError(err))
	}

	user.AccessToken = accessToken
	user.UpdatedAt = time.Now()
	if err := s.users.Update(db, user); err != nil {
		return failStore[dto.LoggedInUserView](err)
	}
	if err := s.users.ReplaceRefreshToken(db, user.ID, refresh); err != nil {
		return failStore[dto.LoggedInUserView](err)
	}

	stored, err := s.users.FindByID(db, user.ID)
	if err != nil {
		return failStore[dto.LoggedInUserView](err)
	}
	if stored.AccessToken != accessToken ||
		stored.RefreshToken == nil ||
		stored.RefreshToken.Token != refresh.Token ||
		stored.RefreshToken.UserID != user.ID ||
		stored.RefreshToken.ExpiresAt.Unix() != refresh.ExpiresAt.Unix() {
		return Rejected[dto.LoggedInUserView](apperrors.ErrPersistenceFailed("user", "Refreshed session was not persisted."))
	}

	cookies.SetRefreshToken(refresh.Token, refresh.ExpiresAt)
	return Ok(loggedInView(stored), "Token refreshed successfully.")
}

// Logout закрывает сессию
func (s *sessionService) Logout(db *gorm.DB, authorization string, cookies CookieSink) *Result[dto.EmptyView] {
	user, err := s.TokenCheck(db, authorization)
	if err != nil {
		return authFail[dto.EmptyView](err)
	}

	user.AccessToken = ""
	user.UpdatedAt = time.Now()
	if err := s.users.Update(db, user); err != nil {
		return failStore[dto.EmptyView](err)
	}
	if err := s.users.DeleteRefreshTokenByUserID(db, user.ID); err != nil {
		return failStore[dto.EmptyView](err)
	}

	stored, err := s.users.FindByID(db, user.ID)
	if err != nil {
		return failStore[dto.EmptyView](err)
	}
	if stored.IsLoggedIn() || stored.RefreshToken != nil {
		return Rejected[dto.EmptyView](apperrors.ErrPersistenceFailed("user", "Session was not closed."))
	}

	cookies.ClearRefreshToken()
	logger.Info("user logged out", "user_id", user.ID)
	return Ok(dto.EmptyView{}, "User logged out successfully.")
}

// UpdateUser перезаписывает учетные данные. Успешное обновление
// принудительно закрывает сессию: старые токены выданы под старые данные.
func (s *sessionService) UpdateUser(db *gorm.DB, authorization string, req *dto.UpdateUserRequest, cookies CookieSink) *Result[dto.UserView] {
	user, err := s.TokenCheck(db, authorization)
	if err != nil {
		return authFail[dto.UserView](err)
	}

	if other, err := s.users.FindByEmail(db, req.Email); err == nil {
		if other.ID != user.ID {
			return Rejected[dto.UserView](apperrors.ErrUnavailableEmail)
		}
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return failStore[dto.UserView](err)
	}
	if other, err := s.users.FindByUserName(db, req.UserName); err == nil {
		if other.ID != user.ID {
			return Rejected[dto.UserView](apperrors.ErrUnavailableUserName)
		}
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return failStore[dto.UserView](err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Rejected[dto.UserView](apperrors.InternalError(err))
	}

	user.UserName = req.UserName
	user.Email = req.Email
	user.PasswordHash = hash
	user.AccessToken = ""
	user.UpdatedAt = time.Now()
	if err := s.users.Update(db, user); err != nil {
		return failStore[dto.UserView](err)
	}
	if err := s.users.DeleteRefreshTokenByUserID(db, user.ID); err != nil {
		return failStore[dto.UserView](err)
	}

	stored, err := s.users.FindByID(db, user.ID)
	if err != nil {
		return failStore[dto.UserView](err)
	}
	if stored.UserName != req.UserName || stored.Email != req.Email ||
		!auth.CheckPasswordHash(req.Password, stored.PasswordHash) ||
		stored.IsLoggedIn() || stored.RefreshToken != nil {
		return Rejected[dto.UserView](apperrors.ErrPersistenceFailed("user", "Account changes were not persisted."))
	}

	cookies.ClearRefreshToken()
	logger.Info("user updated, session closed", "user_id", user.ID)
	return Ok(userView(stored), "Account updated successfully. User has been logged out.")
}

// DeleteUser удаляет учетную запись вместе с токенами
func (s *sessionService) DeleteUser(db *gorm.DB, authorization string, cookies CookieSink) *Result[dto.EmptyView] {
	user, err := s.TokenCheck(db, authorization)
	if err != nil {
		return authFail[dto.EmptyView](err)
	}

	if err := s.users.Delete(db, user.ID); err != nil {
		return failStore[dto.EmptyView](err)
	}

	// Контрольное чтение: пользователя больше не должно быть видно
	if _, err := s.users.FindByID(db, user.ID); err == nil {
		return Rejected[dto.EmptyView](apperrors.ErrPersistenceFailed("user", "User was not deleted."))
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return failStore[dto.EmptyView](err)
	}

	cookies.ClearRefreshToken()
	logger.Info("user deleted", "user_id", user.ID)
	return Ok(dto.EmptyView{}, "User deleted successfully.")
}

// ForgotPassword начинает сброс пароля
func (s *sessionService) ForgotPassword(db *gorm.DB, req *dto.ForgotPasswordRequest) *Result[dto.EmptyView] {
	if req.UserName == "" && req.Email == "" {
		return Rejected[dto.EmptyView](apperrors.NewBadRequestError("Username or email is required."))
	}

	user, err := s.findByIdentifier(db, req.UserName, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return Rejected[dto.EmptyView](apperrors.ErrNotFound(err, "user", "User not found."))
		}
		return failStore[dto.EmptyView](err)
	}

	token, err := s.issuer.GenerateForgotPasswordToken(user)
	if err != nil {
		return Rejected[dto.EmptyView](apperrors.InternalError(err))
	}

	now := time.Now()
	row := &models.ForgotPasswordToken{
		BaseModel: models.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(auth.ForgotPasswordTokenTTL),
	}
	if err := s.users.SaveForgotPasswordToken(db, row); err != nil {
		return failStore[dto.EmptyView](err)
	}

	stored, err := s.users.FindByID(db, user.ID)
	if err != nil {
		return failStore[dto.EmptyView](err)
	}
	if stored.ForgotPasswordToken == nil ||
		stored.ForgotPasswordToken.Token != token ||
		stored.ForgotPasswordToken.IsValidated {
		return Rejected[dto.EmptyView](apperrors.ErrPersistenceFailed("user", "Reset token was not persisted."))
	}

	link := fmt.Sprintf("%s/api/v1/users/reset-password-confirmation?token=%s",
		s.baseURL, url.QueryEscape(token))

	// Отправка письма best-effort: сбой SMTP не отменяет начатый сброс
	if err := s.mail.SendPasswordResetEmail(user.Email, user.UserName, link); err != nil {
		logger.WithError(err).Warn("password reset email not sent", "user_id", user.ID)
	}

	return Ok(dto.EmptyView{}, "Navigate to the link to confirm the password reset: "+link)
}

// ResetPasswordConfirmation подтверждает сброс по токену из ссылки.
// Любой непригодный токен (битый, чужой, истекший, уже подтвержденный)
// дает один и тот же неоднозначный пустой успех: злоумышленник не
// узнает, на чем именно споткнулся.
func (s *sessionService) ResetPasswordConfirmation(db *gorm.DB, token string) *Result[dto.ResetTokenView] {
	if token == "" {
		return AuthRequired[dto.ResetTokenView]("")
	}

	claims, err := s.issuer.ParseToken(token)
	if err != nil {
		return AuthRequired[dto.ResetTokenView]("")
	}

	user, err := s.findByIdentifier(db, claims.UserName, claims.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return AuthRequired[dto.ResetTokenView]("")
		}
		return failStore[dto.ResetTokenView](err)
	}

	fp := user.ForgotPasswordToken
	if fp == nil || fp.Token != token || !fp.UsableForConfirmation(time.Now()) {
		return AuthRequired[dto.ResetTokenView]("")
	}

	// Токен одноразовый: флаг переключается до выдачи access-токена
	fp.IsValidated = true
	fp.UpdatedAt = time.Now()
	if err := s.users.UpdateForgotPasswordToken(db, fp); err != nil {
		return failStore[dto.ResetTokenView](err)
	}

	stored, err := s.users.FindByID(db, user.ID)
	if err != nil {
		return failStore[dto.ResetTokenView](err)
	}
	if stored.ForgotPasswordToken == nil || !stored.ForgotPasswordToken.IsValidated {
		return Rejected[dto.ResetTokenView](apperrors.ErrPersistenceFailed("user", "Reset confirmation was not persisted."))
	}

	accessToken, err := s.issuer.GenerateAccessToken(user)
	if err != nil {
		return Rejected[dto.ResetTokenView](apperrors.InternalError(err))
	}
	user.AccessToken = accessToken
	user.UpdatedAt = time.Now()
	if err := s.users.Update(db, user); err != nil {
		return failStore[dto.ResetTokenView](err)
	}
	stored, err = s.users.FindByID(db, user.ID)
	if err != nil {
		return failStore[dto.ResetTokenView](err)
	}
	if stored.AccessToken != accessToken {
		return Rejected[dto.ResetTokenView](apperrors.ErrPersistenceFailed("user", "Issued token was not persisted."))
	}

	logger.Info("password reset confirmed", "user_id", user.ID)
	return Ok(dto.ResetTokenView{AccessToken: accessToken},
		"Password reset confirmed. Use the issued token to set a new password.")
}

// ResetPassword завершает сброс: новый пароль, сессия остается закрытой
func (s *sessionService) ResetPassword(db *gorm.DB, authorization string, req *dto.ResetPasswordRequest) *Result[dto.EmptyView] {
	user, err := s.TokenCheck(db, authorization)
	if err != nil {
		return authFail[dto.EmptyView](err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Rejected[dto.EmptyView](apperrors.InternalError(err))
	}

	user.PasswordHash = hash
	user.AccessToken = ""
	user.UpdatedAt = time.Now()
	if err := s.users.Update(db, user); err != nil {
		return failStore[dto.EmptyView](err)
	}

	stored, err := s.users.FindByID(db, user.ID)
	if err != nil {
		return failStore[dto.EmptyView](err)
	}
	if !auth.CheckPasswordHash(req.Password, stored.PasswordHash) || stored.IsLoggedIn() {
		return Rejected[dto.EmptyView](apperrors.ErrPersistenceFailed("user", "New password was not persisted."))
	}

	logger.Info("password reset completed", "user_id", user.ID)
	return Ok(dto.EmptyView{}, "Password has been reset. Please log in with your new password.")
}

// findByIdentifier разрешает пользователя сначала по имени, затем по email
func (s *sessionService) findByIdentifier(db *gorm.DB, userName, emailAddr string) (*models.User, error) {
	if userName != "" {
		user, err := s.users.FindByUserName(db, userName)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repositories.ErrUserNotFound) || emailAddr == "" {
			return nil, err
		}
	}
	if emailAddr == "" {
		return nil, repositories.ErrUserNotFound
	}
	return s.users.FindByEmail(db, emailAddr)
}

func userView(u *models.User) dto.UserView {
	return dto.UserView{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func loggedInView(u *models.User) dto.LoggedInUserView {
	return dto.LoggedInUserView{
		UserView:    userView(u),
		AccessToken: u.AccessToken,
	}
}
