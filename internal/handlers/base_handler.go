package handlers

import (
	"fmt"

	"hirepoint_backend/internal/logger"
	"hirepoint_backend/internal/services"
	"hirepoint_backend/internal/validator"
	"hirepoint_backend/pkg/apperrors"
	"hirepoint_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// GetDB извлекает *gorm.DB (пул или транзакцию) из gin.Context.
// Вызывается в каждом хендлере, который обращается к сервисам.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		// Паника уместна: приложение неверно сконфигурировано
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

// BindAndValidate_JSON привязывает тело запроса и прогоняет его через
// валидатор. При ошибке сам пишет ответ и возвращает false.
func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// Authorization возвращает сырой заголовок Authorization.
// Проверка токена целиком живет в сервисном слое.
func (h *BaseHandler) Authorization(c *gin.Context) string {
	return c.GetHeader("Authorization")
}

// respond пишет конверт сервисного результата с подходящим статусом.
// Отказ аутентификации уходит как 401 с success=true и пустым data.
func respond[T any](c *gin.Context, res *services.Result[T], okStatus int) {
	if cause := res.Cause(); cause != nil {
		logger.CtxWarn(c.Request.Context(), "request rejected",
			"code", string(cause.Code),
			"path", c.Request.URL.Path,
		)
	}
	c.JSON(res.Status(okStatus), res)
}
