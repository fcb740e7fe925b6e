package browser

import (
	"fmt"
	"regexp"
	"strings"
)

// SelectorKind различает синтаксис селектора. Снаружи селектор остается строкой.
type SelectorKind int

const (
	KindCSS SelectorKind = iota
	KindXPath
	KindText
)

func (k SelectorKind) String() string {
	switch k {
	case KindXPath:
		return "xpath"
	case KindText:
		return "text"
	default:
		return "css"
	}
}

// KindOf определяет вид селектора по префиксу.
func KindOf(selector string) SelectorKind {
	s := strings.TrimSpace(selector)
	switch {
	case strings.HasPrefix(s, "//"), strings.HasPrefix(s, "(//"), strings.HasPrefix(s, "xpath="):
		return KindXPath
	case strings.HasPrefix(s, "text="):
		return KindText
	default:
		return KindCSS
	}
}

var (
	tagPattern             = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)
	colonSpacePattern      = regexp.MustCompile(`^([^:]+):\s+(.+)$`)
	containsPatternDouble  = regexp.MustCompile(`:contains\("([^"]*)"\)`)
	containsPatternSingle  = regexp.MustCompile(`:contains\('([^']*)'\)`)
	containsPatternNoQuote = regexp.MustCompile(`:contains\(([^)"']+)\)`)
)

// LooksLikeSelector сообщает, похожа ли строка на готовый селектор, а не на
// ключ из карты элементов. Ключи вида "login-button" сюда не проходят.
func LooksLikeSelector(s string) bool {
	if s == "" || ValidateSelector(s) != nil {
		return false
	}
	return strings.HasPrefix(s, ".") ||
		strings.HasPrefix(s, "#") ||
		strings.Contains(s, "[") ||
		strings.HasPrefix(s, "//") ||
		strings.HasPrefix(s, "text=") ||
		strings.HasPrefix(s, "role=") ||
		tagPattern.MatchString(s) ||
		strings.Contains(s, "::") ||
		strings.Contains(s, ",") ||
		strings.Contains(s, ":has") ||
		strings.Contains(s, ":text")
}

// NormalizeSelector приводит невалидные для Playwright записи к валидным:
// jQuery :contains() превращается в :has-text(), "button: Текст" в
// button:has-text("Текст"). Второе значение сообщает, был ли селектор изменен.
func NormalizeSelector(selector string) (string, bool) {
	if selector == "" || KindOf(selector) != KindCSS {
		return selector, false
	}

	normalized := selector
	changed := false

	if m := colonSpacePattern.FindStringSubmatch(normalized); m != nil && !strings.ContainsAny(normalized, "([=") {
		tagPart := strings.TrimSpace(m[1])
		textPart := strings.TrimSpace(m[2])
		if tagPart != "" && textPart != "" {
			normalized = tagPart + `:has-text("` + strings.ReplaceAll(textPart, `"`, `\"`) + `")`
			changed = true
		}
	}

	replace := func(re *regexp.Regexp) {
		normalized = re.ReplaceAllStringFunc(normalized, func(match string) string {
			changed = true
			text := strings.TrimSpace(re.FindStringSubmatch(match)[1])
			text = strings.ReplaceAll(text, `\`, `\\`)
			text = strings.ReplaceAll(text, `"`, `\"`)
			return `:has-text("` + text + `")`
		})
	}
	replace(containsPatternDouble)
	replace(containsPatternSingle)
	replace(containsPatternNoQuote)

	return normalized, changed
}

// ValidateSelector отсекает критические ошибки: пустой селектор и URL вместо селектора.
func ValidateSelector(selector string) error {
	if strings.TrimSpace(selector) == "" {
		return fmt.Errorf("селектор не может быть пустым")
	}

	trimmed := strings.TrimSpace(selector)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return fmt.Errorf("селектор не может быть URL: %s", selector)
	}
	if strings.Contains(trimmed, "://") {
		return fmt.Errorf("селектор не может содержать протокол (://): %s", selector)
	}
	return nil
}

// EscapeIdent экранирует идентификатор для # и . частей CSS селектора.
func EscapeIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r >= 0x80:
			b.WriteRune(r)
		case r == '-':
			if i == 0 && len(s) == 1 {
				b.WriteString(`\-`)
			} else {
				b.WriteRune(r)
			}
		case r >= '0' && r <= '9':
			if i == 0 || (i == 1 && s[0] == '-') {
				fmt.Fprintf(&b, `\%x `, r)
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
