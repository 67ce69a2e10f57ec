package routes

import (
	"hirepoint_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты приложения.
// Защищенные маршруты не отличаются на уровне роутера: проверка токена
// выполняется сервисами, поэтому группы здесь чисто структурные.
func RegisterRoutes(r *gin.Engine, h *handlers.AppHandlers) {
	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("/register", h.UserHandler.Register)
		users.POST("/login", h.UserHandler.Login)
		users.POST("/refresh-token", h.UserHandler.Refresh)
		users.POST("/logout", h.UserHandler.Logout)
		users.GET("", h.UserHandler.GetUsers)
		users.PUT("", h.UserHandler.Update)
		users.DELETE("", h.UserHandler.Delete)
		users.POST("/forgot-password", h.UserHandler.ForgotPassword)
		users.GET("/reset-password-confirmation", h.UserHandler.ResetPasswordConfirmation)
		users.POST("/reset-password", h.UserHandler.ResetPassword)
	}

	vacancies := v1.Group("/vacancies")
	{
		vacancies.GET("", h.VacancyHandler.List)
		vacancies.GET("/:id", h.VacancyHandler.Get)
		vacancies.POST("", h.VacancyHandler.Create)
		vacancies.PUT("/:id", h.VacancyHandler.Update)
		vacancies.DELETE("/:id", h.VacancyHandler.Delete)
		vacancies.POST("/:id/apply", h.VacancyHandler.Apply)
	}
}
