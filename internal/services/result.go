package services

import (
	"net/http"

	"hirepoint_backend/internal/repositories"
	"hirepoint_backend/pkg/apperrors"
)

// Result - единый конверт ответа сервисного слоя. Сериализуется как
// {success, message, data}. Возможны ровно три состояния:
//
//   - Ok:           success=true, data присутствует
//   - Rejected:     success=false, data отсутствует
//   - AuthRequired: success=true, data отсутствует - токен не прошел
//     проверку; HTTP-слой отдает такой конверт со статусом 401
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data,omitempty"`

	// причина отказа; не сериализуется, нужна HTTP-слою для выбора статуса
	cause *apperrors.AppError
}

// Ok строит успешный результат с данными
func Ok[T any](data T, message string) *Result[T] {
	return &Result[T]{Success: true, Message: message, Data: &data}
}

// Rejected строит отказ бизнес-правила или инфраструктуры
func Rejected[T any](cause *apperrors.AppError) *Result[T] {
	return &Result[T]{Success: false, Message: cause.Message, cause: cause}
}

// AuthRequired строит результат "нужна аутентификация": success=true,
// но данных нет. Сообщение намеренно не уточняет причину отказа токена.
func AuthRequired[T any](message string) *Result[T] {
	return &Result[T]{Success: true, Message: message}
}

// IsAuthRequired - является ли результат отказом аутентификации
func (r *Result[T]) IsAuthRequired() bool {
	return r.Success && r.Data == nil
}

// Status возвращает HTTP-статус для этого результата.
// okStatus используется только для состояния Ok.
func (r *Result[T]) Status(okStatus int) int {
	if r.IsAuthRequired() {
		return http.StatusUnauthorized
	}
	if !r.Success {
		if r.cause != nil && r.cause.HTTPCode != 0 {
			return r.cause.HTTPCode
		}
		return http.StatusBadRequest
	}
	return okStatus
}

// Cause возвращает причину отказа (nil для успешных результатов)
func (r *Result[T]) Cause() *apperrors.AppError {
	return r.cause
}

// failStore переводит ошибку хранилища в отказ: транзиентные сбои
// получают код STORE_UNAVAILABLE (клиент может повторить запрос),
// остальные - DATABASE_ERROR.
func failStore[T any](err error) *Result[T] {
	if apperrors.Is(err, repositories.ErrStoreUnavailable) {
		return Rejected[T](apperrors.ErrStoreUnavailable(err))
	}
	return Rejected[T](apperrors.ErrDatabase(err))
}
