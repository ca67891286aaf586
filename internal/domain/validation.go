package domain

import (
	"regexp"
	"strings"
)

var (
	loginRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)
	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

func ValidLogin(s string) bool {
	return loginRe.MatchString(s)
}

// Пароль: мин 8, буквы в обоих регистрах, >=1 цифра
func ValidPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	return upperRe.MatchString(s) && lowerRe.MatchString(s) && digitRe.MatchString(s)
}

// Заголовок проекта: непустой после trim, не длиннее 200
func ValidProjectTitle(s string) bool {
	t := strings.TrimSpace(s)
	return t != "" && len(t) <= 200
}

// Комментарий: непустой, не длиннее 4000
func ValidCommentBody(s string) bool {
	t := strings.TrimSpace(s)
	return t != "" && len(t) <= 4000
}
