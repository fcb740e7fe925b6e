package sanitizer

import "regexp"

// DOBSanitizer скрывает даты: на странице пациента любая дата может быть датой рождения.
type DOBSanitizer struct{}

var dobPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(0?[1-9]|1[0-2])/(0?[1-9]|[12]\d|3[01])/(19|20)\d{2}\b`),
	regexp.MustCompile(`\b(19|20)\d{2}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])\b`),
}

func (s *DOBSanitizer) Sanitize(text string) string {
	return replaceAll(text, dobPatterns, `[FILTERED_DATE]`)
}
