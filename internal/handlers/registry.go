package handlers

// AppHandlers - контейнер всех хендлеров приложения
type AppHandlers struct {
	UserHandler    *UserHandler
	VacancyHandler *VacancyHandler
}
