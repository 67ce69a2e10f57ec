package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// Общие, не-доменные коды ошибок
const (
	// Системные и неизвестные ошибки
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError    ErrorCode = "DATABASE_ERROR"
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// Общие ошибки бизнес-логики (используются фабриками)
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"

	// Аутентификация и Авторизация (они сквозные)
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// Доменные коды вакансий
	CodeVacancyExpired ErrorCode = "VACANCY_EXPIRED"
	CodeVacancyFull    ErrorCode = "VACANCY_FULL"
	CodeCooldownActive ErrorCode = "COOLDOWN_ACTIVE"

	// Запись прошла, но контрольное чтение вернуло другое состояние
	CodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
)
