package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для общих ошибок бизнес-логики и домена.
*/

// ErrNotFound - фабрика для ошибки "не найдено" (404)
// Используется, когда ошибка репозитория (типа gorm.ErrRecordNotFound)
// должна быть преобразована в AppError.
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(domain, message string) *AppError {
	return New(CodeConflict, domain, message, http.StatusConflict)
}

// ErrStoreUnavailable - фабрика для транзиентных ошибок хранилища.
// Единственный код, пригодный для повтора запроса на стороне клиента.
func ErrStoreUnavailable(err error) *AppError {
	return Wrap(err, CodeStoreUnavailable, "store", "Store temporarily unavailable, retry the request", http.StatusServiceUnavailable)
}

// ErrDatabase - фабрика для прочих ошибок БД (не транзиентных)
func ErrDatabase(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "store", "Database error", http.StatusInternalServerError)
}

// ErrPersistenceFailed - контрольное чтение после записи вернуло не то,
// что было записано. Отличает "бизнес-правило отклонило изменение" от
// "хранилище молча не применило его".
func ErrPersistenceFailed(domain, message string) *AppError {
	return New(CodePersistenceFailed, domain, message, http.StatusInternalServerError)
}

// --- Вакансии ---

// ErrVacancyExpired - дата истечения вакансии в прошлом
var ErrVacancyExpired = New(
	CodeVacancyExpired,
	"vacancy",
	"Vacancy has expired.",
	http.StatusBadRequest,
)

// ErrVacancyFull - оставшийся объем вакансии равен нулю
var ErrVacancyFull = New(
	CodeVacancyFull,
	"vacancy",
	"Vacancy is full.",
	http.StatusBadRequest,
)

// ErrCooldownActive - повторная подача раньше, чем через 24 часа
var ErrCooldownActive = New(
	CodeCooldownActive,
	"vacancy",
	"You have already applied for this vacancy within the last 24 hours.",
	http.StatusBadRequest,
)

// --- Пользователи ---

// ErrInvalidToken - подпись, структура или срок действия токена не прошли проверку
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// ErrUnavailableEmail - email уже занят другим пользователем
var ErrUnavailableEmail = New(
	CodeConflict,
	"user",
	"Email is already in use.",
	http.StatusConflict,
)

// ErrUnavailableUserName - имя пользователя уже занято
var ErrUnavailableUserName = New(
	CodeConflict,
	"user",
	"Username is already in use.",
	http.StatusConflict,
)
