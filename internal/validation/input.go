package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации модерационных правок и жалоб.
const (
	MaxEditValueLength    = 5000
	MaxReasonLength       = 500
	MaxDescriptionLength  = 2000
	MaxEditKeys           = 8
	MinReasonLength       = 3
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая после trim.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s обязателен", fieldName)
	}
	return nil
}

// ValidateReason проверяет причину жалобы или санкции.
func ValidateReason(reason string) error {
	if err := ValidateNonEmpty("причина", reason); err != nil {
		return err
	}
	return ValidateLength("причина", reason, MinReasonLength, MaxReasonLength)
}

// ValidateContentEdits проверяет карту модераторских правок:
// ограничивает количество ключей и длину значений.
func ValidateContentEdits(edits map[string]string) error {
	if len(edits) == 0 {
		return fmt.Errorf("правки контента обязательны для этого действия")
	}
	if len(edits) > MaxEditKeys {
		return fmt.Errorf("слишком много полей правок: максимум %d", MaxEditKeys)
	}
	for key, value := range edits {
		if err := ValidateLength("правка "+key, value, 0, MaxEditValueLength); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeEditValue убирает управляющие символы из значения правки,
// сохраняя переводы строк и табуляцию.
func SanitizeEditValue(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// SanitizeContentEdits применяет SanitizeEditValue ко всем значениям карты.
func SanitizeContentEdits(edits map[string]string) map[string]string {
	if edits == nil {
		return nil
	}
	clean := make(map[string]string, len(edits))
	for key, value := range edits {
		clean[key] = SanitizeEditValue(value)
	}
	return clean
}
