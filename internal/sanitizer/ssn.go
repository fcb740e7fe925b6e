package sanitizer

import "regexp"

// SSNSanitizer скрывает номера социального страхования и номера медицинских карт (MRN).
type SSNSanitizer struct{}

var ssnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	regexp.MustCompile(`(?i)\b(ssn|social security|mrn|medical record)(\s*(?:number|no\.?|#)?\s*[:=]?\s*)\d[\d-]{5,}`),
}

func (s *SSNSanitizer) Sanitize(text string) string {
	text = ssnPatterns[0].ReplaceAllString(text, `[FILTERED_SSN]`)
	return ssnPatterns[1].ReplaceAllString(text, `${1}${2}[FILTERED_SSN]`)
}
