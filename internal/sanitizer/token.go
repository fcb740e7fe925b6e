package sanitizer

import "regexp"

type TokenSanitizer struct{}

var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)((?:api[_-]?key|api[_-]?token|access[_-]?token|secret[_-]?key|token|session[_-]?id)\s*[:=]\s*["']?)[a-zA-Z0-9_\-.]{16,}`),
	regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9_\-.=]{16,}`),
	regexp.MustCompile(`()\beyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
	regexp.MustCompile(`()\bsk-[a-zA-Z0-9]{32,}`),
}

func (s *TokenSanitizer) Sanitize(text string) string {
	return replaceAll(text, tokenPatterns, `${1}[FILTERED]`)
}
