package services

// ServiceContainer - контейнер всех сервисов приложения.
// Собирается один раз на старте и передается в хендлеры.
type ServiceContainer struct {
	SessionService SessionService
	VacancyService VacancyService
}
