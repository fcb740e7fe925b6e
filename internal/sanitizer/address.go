package sanitizer

import "regexp"

type AddressSanitizer struct{}

var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d{1,6}\s+(?:[A-Za-z0-9.]+\s+){1,4}(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way|place|pl)\b\.?`),
	regexp.MustCompile(`(?i)(address|адрес)(\s*[:=]\s*)["']?[^"'\n<]{10,}["']?`),
}

func (s *AddressSanitizer) Sanitize(text string) string {
	text = addressPatterns[0].ReplaceAllString(text, `[FILTERED_ADDRESS]`)
	return addressPatterns[1].ReplaceAllString(text, `${1}${2}[FILTERED_ADDRESS]`)
}
