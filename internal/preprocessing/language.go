package preprocessing

import (
	"unicode"

	"github.com/spacesedan/reviewlens/internal/models"
)

// DetectLanguage reports LanguageEN when every rune of text is 7-bit ASCII and
// LanguageNonEN otherwise. It is a heuristic: English with accented loanwords or
// typographic quotes is reported as non-en.
func DetectLanguage(text string) models.LanguageTag {
	for _, r := range text {
		if r > unicode.MaxASCII {
			return models.LanguageNonEN
		}
	}
	return models.LanguageEN
}
