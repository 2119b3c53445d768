package preprocessing

import "regexp"

var htmlTagPattern = regexp.MustCompile(`<.*?>`)

// CleanText removes every HTML-like tag from text. Text without tags is returned unchanged.
func CleanText(text string) string {
	return htmlTagPattern.ReplaceAllString(text, "")
}
