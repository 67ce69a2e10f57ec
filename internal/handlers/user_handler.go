package handlers

import (
	"net/http"

	"hirepoint_backend/internal/services"
	"hirepoint_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// UserHandler обслуживает маршруты учетных записей и сессий
type UserHandler struct {
	*BaseHandler
	sessions services.SessionService
}

func NewUserHandler(base *BaseHandler, sessions services.SessionService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		sessions:    sessions,
	}
}

// Register обрабатывает POST /api/v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res := h.sessions.Register(h.GetDB(c), &req)
	respond(c, res, http.StatusCreated)
}

// Login обрабатывает POST /api/v1/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res := h.sessions.Login(h.GetDB(c), &req, newCookieSink(c))
	respond(c, res, http.StatusOK)
}

// Refresh обрабатывает POST /api/v1/users/refresh-token
func (h *UserHandler) Refresh(c *gin.Context) {
	res := h.sessions.Refresh(h.GetDB(c), h.Authorization(c), refreshCookie(c), newCookieSink(c))
	respond(c, res, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/users/logout
func (h *UserHandler) Logout(c *gin.Context) {
	res := h.sessions.Logout(h.GetDB(c), h.Authorization(c), newCookieSink(c))
	respond(c, res, http.StatusOK)
}

// GetUsers обрабатывает GET /api/v1/users
func (h *UserHandler) GetUsers(c *gin.Context) {
	res := h.sessions.GetUsers(h.GetDB(c))
	respond(c, res, http.StatusOK)
}

// Update обрабатывает PUT /api/v1/users
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res := h.sessions.UpdateUser(h.GetDB(c), h.Authorization(c), &req, newCookieSink(c))
	respond(c, res, http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/users
func (h *UserHandler) Delete(c *gin.Context) {
	res := h.sessions.DeleteUser(h.GetDB(c), h.Authorization(c), newCookieSink(c))
	respond(c, res, http.StatusOK)
}

// ForgotPassword обрабатывает POST /api/v1/users/forgot-password
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res := h.sessions.ForgotPassword(h.GetDB(c), &req)
	respond(c, res, http.StatusOK)
}

// ResetPasswordConfirmation обрабатывает
// GET /api/v1/users/reset-password-confirmation?token=...
func (h *UserHandler) ResetPasswordConfirmation(c *gin.Context) {
	res := h.sessions.ResetPasswordConfirmation(h.GetDB(c), c.Query("token"))
	respond(c, res, http.StatusOK)
}

// ResetPassword обрабатывает POST /api/v1/users/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res := h.sessions.ResetPassword(h.GetDB(c), h.Authorization(c), &req)
	respond(c, res, http.StatusOK)
}
