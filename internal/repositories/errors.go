package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrUserNotFound возвращается, когда пользователь не найден в БД
	ErrUserNotFound = errors.New("user not found")

	// ErrVacancyNotFound возвращается, когда вакансия не найдена в БД
	ErrVacancyNotFound = errors.New("vacancy not found")

	// ErrApplicantNotFound возвращается, когда отклик на вакансию не найден
	ErrApplicantNotFound = errors.New("applicant not found")

	// ErrRefreshTokenNotFound возвращается, когда refresh-токен не найден в БД
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// ErrVacancyFull возвращается, когда условный декремент не затронул
	// ни одной строки: объем уже нулевой
	ErrVacancyFull = errors.New("vacancy has no remaining volume")

	// ErrCooldownActive возвращается, когда запись отклика проиграла гонку:
	// либо повторная подача не прошла условие по applied_date, либо вставка
	// уперлась в уникальный индекс (userID, vacancyID)
	ErrCooldownActive = errors.New("reapply cooldown is active")

	// ErrStoreUnavailable - транзиентная ошибка хранилища (таймаут, обрыв
	// соединения). Единственный вид ошибки, пригодный для повтора.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// classify переводит инфраструктурные ошибки в ErrStoreUnavailable,
// чтобы истекший таймаут никогда не выглядел как тихий успех или
// неизвестный сбой. gorm.ErrRecordNotFound оставляем вызывающему.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		return err
	}
}
