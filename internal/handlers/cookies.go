package handlers

import (
	"time"

	"hirepoint_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// refreshCookieName - имя http-only cookie с refresh-токеном
const refreshCookieName = "refreshToken"

// ginCookieSink адаптирует gin.Context под services.CookieSink:
// сервисы управляют refresh-cookie, не зная про gin.
type ginCookieSink struct {
	c *gin.Context
}

func newCookieSink(c *gin.Context) services.CookieSink {
	return &ginCookieSink{c: c}
}

// SetRefreshToken выставляет http-only cookie с refresh-токеном
func (s *ginCookieSink) SetRefreshToken(token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	s.c.SetCookie(refreshCookieName, token, maxAge, "/", "", false, true)
}

// ClearRefreshToken удаляет refresh-cookie
func (s *ginCookieSink) ClearRefreshToken() {
	s.c.SetCookie(refreshCookieName, "", -1, "/", "", false, true)
}

// refreshCookie читает refresh-cookie запроса (пустая строка, если нет)
func refreshCookie(c *gin.Context) string {
	value, err := c.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return value
}
