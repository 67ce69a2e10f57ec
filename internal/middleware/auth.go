package middleware

import (
	"strings"

	"hirepoint_backend/internal/auth"
	"hirepoint_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// AuthContextMiddleware разбирает bearer-токен и обогащает контекст
// запроса user_id для логов. Запрос НЕ прерывается: единственная
// авторитетная проверка токена живет в сервисном слое, где подписанный
// токен дополнительно сверяется с сохраненным за пользователем.
func AuthContextMiddleware(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if claims, err := issuer.ParseToken(tokenStr); err == nil && claims.Subject != "" {
				ctx := logger.WithUserID(c.Request.Context(), claims.Subject)
				c.Request = c.Request.WithContext(ctx)
				c.Set("userID", claims.Subject)
				c.Set("role", claims.Role)
			}
		}
		c.Next()
	}
}
