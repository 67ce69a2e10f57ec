package validator

import (
	"log"

	"hirepoint_backend/internal/auth"
	"hirepoint_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Если правило не удалось зарегистрировать, приложение
			// не должно запускаться.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-user-role': роль, допустимая при регистрации
	mustRegister("is-user-role", validateUserRole)

	// 'username': формат имени пользователя
	mustRegister("username", validateUserName)

	// 'userpassword': сложность пароля
	mustRegister("userpassword", validateUserPassword)
}

// --- Функции валидации ---

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Не проверяем пустые значения, для этого есть 'required'
	}
	for _, role := range models.ValidUserRoles {
		if string(role) == value {
			return true
		}
	}
	return false
}

func validateUserName(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return auth.IsValidUserName(value)
}

func validateUserPassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return auth.IsValidPassword(value)
}
