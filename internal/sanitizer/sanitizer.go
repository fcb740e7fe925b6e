// Package sanitizer вычищает персональные и медицинские данные пациента из
// текста и разметки, прежде чем они покинут процесс.
package sanitizer

import "regexp"

type Rule interface {
	Sanitize(text string) string
}

// DataSanitizer применяет правила по порядку. Правила с контекстным ключом
// (password=, token=) идут первыми, чтобы общие шаблоны их не раздробили.
type DataSanitizer struct {
	rules []Rule
}

func New() *DataSanitizer {
	return &DataSanitizer{
		rules: []Rule{
			&PasswordSanitizer{},
			&TokenSanitizer{},
			&CardSanitizer{},
			&SSNSanitizer{},
			&DOBSanitizer{},
			&EmailSanitizer{},
			&PhoneSanitizer{},
			&AddressSanitizer{},
		},
	}
}

func (s *DataSanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}
	for _, rule := range s.rules {
		text = rule.Sanitize(text)
	}
	return text
}

// replaceAll применяет шаблоны по очереди с одной заменой.
func replaceAll(text string, patterns []*regexp.Regexp, repl string) string {
	for _, p := range patterns {
		text = p.ReplaceAllString(text, repl)
	}
	return text
}
