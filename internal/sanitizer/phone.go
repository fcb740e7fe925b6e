package sanitizer

import "regexp"

type PhoneSanitizer struct{}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\b\d{3}\)?[-.\s]?\d{3}[-.\s]\d{4}\b`),
	regexp.MustCompile(`\+\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{2,4}[-.\s]?\d{2,4}[-.\s]?\d{0,4}\b`),
}

func (s *PhoneSanitizer) Sanitize(text string) string {
	return replaceAll(text, phonePatterns, `[FILTERED_PHONE]`)
}
