// Package healing восстанавливает сломанные селекторы по подсказке и снимку DOM
// и выполняет действия через восстановленный селектор.
package healing

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
)

const maxTextSnippet = 80

// Теги, текст которых не годится для :has-text.
var structuralTags = map[string]bool{
	"html": true, "head": true, "style": true, "script": true, "meta": true, "link": true,
}

// FindAlternativeSelector ищет в разметке первый элемент (в порядке документа),
// у которого подсказка содержится в id, name, placeholder, aria-label, title,
// data-* атрибуте, токене класса или собственном тексте, именно в таком порядке.
// Чистая функция: одинаковые входы дают одинаковый результат.
func FindAlternativeSelector(markup, hint string) (string, bool) {
	if hint == "" {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", false
	}

	needle := strings.ToLower(hint)
	var found string
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if sel, ok := candidateFor(s.Get(0), needle); ok {
			found = sel
			return false
		}
		return true
	})
	return found, found != ""
}

func candidateFor(n *html.Node, needle string) (string, bool) {
	tag := n.Data
	matches := func(v string) bool {
		return v != "" && strings.Contains(strings.ToLower(v), needle)
	}

	if v, ok := attr(n, "id"); ok && matches(v) {
		return tag + "#" + browser.EscapeIdent(v), true
	}
	for _, name := range []string{"name", "placeholder", "aria-label", "title"} {
		if v, ok := attr(n, name); ok && matches(v) {
			return attrSelector(tag, name, v), true
		}
	}
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "data-") && matches(a.Val) {
			return attrSelector(tag, a.Key, a.Val), true
		}
	}
	if v, ok := attr(n, "class"); ok {
		classes := strings.Fields(v)
		for _, c := range classes {
			if matches(c) {
				return classSelector(tag, classes), true
			}
		}
	}

	if structuralTags[tag] {
		return "", false
	}
	text := ownText(n)
	if !matches(text) {
		return "", false
	}
	snippet := truncate(text, maxTextSnippet)
	snippet = strings.TrimSpace(strings.NewReplacer(`"`, "", "<", "", ">", "", `\`, "").Replace(snippet))
	if snippet == "" {
		return "", false
	}
	return tag + `:has-text("` + snippet + `")`, true
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// ownText собирает только прямые текстовые узлы элемента, без потомков.
func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func attrSelector(tag, name, value string) string {
	return fmt.Sprintf(`%s[%s="%s"]`, tag, name, escapeAttr(value))
}

func classSelector(tag string, classes []string) string {
	escaped := make([]string, len(classes))
	for i, c := range classes {
		escaped[i] = browser.EscapeIdent(c)
	}
	return tag + "." + strings.Join(escaped, ".")
}

func escapeAttr(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
