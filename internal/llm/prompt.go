package llm

import "fmt"

// maxMarkupRunes ограничивает размер разметки в запросе.
const maxMarkupRunes = 15000

const systemPrompt = `Ты помогаешь автотестам медицинского портала находить элементы страницы.
По HTML и подсказке верни ОДИН CSS селектор Playwright, который однозначно находит нужный элемент.
Предпочитай id, name, placeholder, aria-label, data-* атрибуты. Допустим :has-text("...").
Не придумывай атрибуты, которых нет в разметке.
Ответ строго в JSON: {"selector": "...", "confidence": 0.0-1.0, "reason": "кратко"}.
Если элемента нет, верни {"selector": "", "confidence": 0, "reason": "..."}.`

func userPrompt(markup, hint string) string {
	r := []rune(markup)
	if len(r) > maxMarkupRunes {
		markup = string(r[:maxMarkupRunes])
	}
	return fmt.Sprintf("Подсказка: %s\n\nHTML:\n%s", hint, markup)
}

// estimateTokens грубо оценивает токены: ~4 символа на токен плюс ответ.
func estimateTokens(maxTokens int, texts ...string) int {
	n := maxTokens
	for _, t := range texts {
		n += len(t) / 4
	}
	return n
}
