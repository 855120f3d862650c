package services

import (
	"fmt"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
)

const maxContentRunes = 255

// ValidateChirpContent проверяет правило "только эмодзи" и длину 1-255 рун.
// Грамматика: каждый графемный кластер строки должен быть эмодзи из базы
// gomoji. Составные последовательности (флаги, тона кожи, ZWJ-семьи,
// variation selectors) проходят целиком, любой текст и пробелы - нет.
func ValidateChirpContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n == 0 {
		return fmt.Errorf("%w: content must not be empty", ErrValidation)
	}
	if n > maxContentRunes {
		return fmt.Errorf("%w: content must be at most %d characters", ErrValidation, maxContentRunes)
	}

	if gomoji.RemoveEmojis(content) != "" {
		return fmt.Errorf("%w: only emojis are allowed", ErrValidation)
	}
	return nil
}
