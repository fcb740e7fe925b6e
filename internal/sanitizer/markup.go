package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const filtered = "[FILTERED]"

// keptAttributes описывают элемент и нужны для подбора селектора.
// Их значения проходят через правила, остальные атрибуты отбрасываются.
var keptAttributes = map[string]bool{
	"id": true, "class": true, "name": true, "type": true, "role": true,
	"placeholder": true, "aria-label": true, "title": true, "alt": true,
	"for": true, "href": true,
}

// SanitizeMarkup возвращает разметку, пригодную для отправки наружу: текст и
// значения атрибутов прошли через правила, value у полей ввода заменено,
// script, style и комментарии удалены. Разбор потоковый через x/net/html.
func (s *DataSanitizer) SanitizeMarkup(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skip := 0
	// Текст textarea это значение поля, оно заменяется целиком, как value у input.
	inTextarea := false

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF или битая разметка: отдаем то, что успели разобрать.
			return b.String()

		case html.CommentToken, html.DoctypeToken:
			continue

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom == atom.Script || tok.DataAtom == atom.Style {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if skip > 0 {
				continue
			}
			if tok.DataAtom == atom.Textarea && tt == html.StartTagToken {
				inTextarea = true
			}
			tok.Attr = s.sanitizeAttrs(tok)
			b.WriteString(tok.String())

		case html.EndTagToken:
			tok := z.Token()
			if tok.DataAtom == atom.Script || tok.DataAtom == atom.Style {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip > 0 {
				continue
			}
			if tok.DataAtom == atom.Textarea {
				inTextarea = false
			}
			b.WriteString(tok.String())

		case html.TextToken:
			if skip > 0 {
				continue
			}
			if inTextarea {
				if strings.TrimSpace(string(z.Text())) != "" {
					b.WriteString(filtered)
				}
				continue
			}
			text := s.Sanitize(html.UnescapeString(string(z.Text())))
			b.WriteString(html.EscapeString(text))
		}
	}
}

func (s *DataSanitizer) sanitizeAttrs(tok html.Token) []html.Attribute {
	isField := tok.DataAtom == atom.Input || tok.DataAtom == atom.Textarea || tok.DataAtom == atom.Option

	out := make([]html.Attribute, 0, len(tok.Attr))
	for _, a := range tok.Attr {
		key := strings.ToLower(a.Key)
		switch {
		case key == "value" && isField:
			if a.Val != "" {
				a.Val = filtered
			}
		case strings.HasPrefix(key, "data-") || keptAttributes[key]:
			a.Val = s.Sanitize(a.Val)
		default:
			continue
		}
		out = append(out, a)
	}
	return out
}
