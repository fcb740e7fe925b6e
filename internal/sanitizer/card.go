package sanitizer

import "regexp"

type CardSanitizer struct{}

var cardPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
	regexp.MustCompile(`(?i)(cvv2?|cvc2?)\s*[:=]\s*["']?\d{3,4}["']?`),
}

func (s *CardSanitizer) Sanitize(text string) string {
	return replaceAll(text, cardPatterns, `[FILTERED_CARD]`)
}
