package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChirpContent(t *testing.T) {
	valid := []struct {
		name    string
		content string
	}{
		{"single emoji", "😀"},
		{"multiple emojis", "😀🎉🔥"},
		{"skin tone modifier", "👍🏽"},
		{"zwj sequence", "👨‍👩‍👧"},
		{"flag", "🇺🇦"},
		{"variation selector", "❤️"},
	}
	for _, tc := range valid {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, ValidateChirpContent(tc.content))
		})
	}

	invalid := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"plain text", "hello"},
		{"mixed text and emoji", "😀a"},
		{"emoji with trailing text", "🔥fire"},
		{"whitespace between emojis", "😀 😀"},
		{"digits", "123"},
		{"too long", strings.Repeat("😀", 256)},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateChirpContent(tc.content)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidateChirpContentMaxLength(t *testing.T) {
	// Ровно 255 эмодзи - верхняя граница, проходит
	assert.NoError(t, ValidateChirpContent(strings.Repeat("🎉", 255)))
}
