package sanitizer

import "regexp"

type PasswordSanitizer struct{}

var passwordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(password|passwd|pwd|пароль)(\s*[:=]\s*)["']?[^"'\s]{3,}["']?`),
}

func (s *PasswordSanitizer) Sanitize(text string) string {
	return replaceAll(text, passwordPatterns, `${1}${2}[FILTERED]`)
}
