package auth

import "regexp"

var (
	userNameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// IsValidUserName проверяет формат имени пользователя
func IsValidUserName(userName string) bool {
	return userNameRe.MatchString(userName)
}

// IsValidEmail проверяет формат email
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword проверяет сложность пароля:
// минимум 8 символов, хотя бы одна буква и одна цифра
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
