package utils

import (
	"unicode/utf8"
)

// TruncateUTF8 truncates text to at most maxLen bytes without splitting
// a multi-byte sequence. A non-positive maxLen leaves the text as is.
func TruncateUTF8(text string, maxLen int) string {
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}

	truncated := text[:maxLen]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated
}

// SanitizeUTF8 drops invalid UTF-8 sequences from text.
func SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[i:]); size == 1 {
				continue
			}
		}
		result = append(result, r)
	}
	return string(result)
}
