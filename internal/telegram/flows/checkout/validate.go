package checkout

import (
	"strings"
	"unicode"
)

// ValidateName - имя принимается любое непустое.
func ValidateName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	return name, name != ""
}

// ValidatePhone проверяет, что строка похожа на телефон: опциональный плюс
// и 10-15 цифр, пробелы/скобки/дефисы допустимы.
func ValidatePhone(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", false
	}

	var digits strings.Builder
	for i, r := range cleaned {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case r == '+' && i == 0:
		case r == ' ' || r == '(' || r == ')' || r == '-':
		default:
			return "", false
		}
	}

	n := digits.Len()
	if n < 10 || n > 15 {
		return "", false
	}

	normalized := digits.String()
	if strings.HasPrefix(cleaned, "+") {
		normalized = "+" + normalized
	}
	return normalized, true
}

// ValidateAddress отсекает явно неполные адреса.
func ValidateAddress(raw string) (string, bool) {
	address := strings.TrimSpace(raw)
	return address, len([]rune(address)) >= 10
}
