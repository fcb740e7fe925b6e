package visual

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// SanitizeTestName оставляет латиницу, цифры, пробелы, '-' и '_',
// заменяет пробельные последовательности на '-' и приводит к нижнему регистру.
func SanitizeTestName(name string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		case isASCIIAlnum(r), r == '-', r == '_':
			b.WriteRune(unicode.ToLower(r))
			inSpace = false
		}
	}
	return b.String()
}

// ShortID строит имя эталона: до 20 символов имени теста, до 10 символов
// имени элемента и до 6 первых цифр хеша от полной пары. Стабилен между запусками.
func ShortID(sanitizedTestName, elementKey string) string {
	base := truncateASCII(sanitizedTestName, 20)

	var elem strings.Builder
	for _, r := range elementKey {
		if isASCIIAlnum(r) {
			elem.WriteRune(r)
		}
	}
	element := truncateASCII(elem.String(), 10)

	hash := truncateASCII(strconv.FormatInt(stringHash(sanitizedTestName+"-"+elementKey), 10), 6)
	return base + "-" + element + "-" + hash
}

// stringHash считает 32-битный полиномиальный хеш (основание 31) по UTF-16
// единицам строки, по модулю.
func stringHash(s string) int64 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

func isASCIIAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

func truncateASCII(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
