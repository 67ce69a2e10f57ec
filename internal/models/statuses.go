package models

// UserRole - роль пользователя
type UserRole string

const (
	// UserRoleEmployer - владелец вакансий, может их создавать и изменять
	UserRoleEmployer UserRole = "employer"
	// UserRoleApplicant - соискатель, может откликаться на вакансии
	UserRoleApplicant UserRole = "applicant"
	// UserRoleAdmin - служебная роль, создается при старте приложения
	UserRoleAdmin UserRole = "admin"
)

// ValidUserRoles - допустимые роли при регистрации
var ValidUserRoles = []UserRole{UserRoleEmployer, UserRoleApplicant}

// IsValidUserRole проверяет, что роль известна системе
func IsValidUserRole(role UserRole) bool {
	switch role {
	case UserRoleEmployer, UserRoleApplicant, UserRoleAdmin:
		return true
	}
	return false
}
