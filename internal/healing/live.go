package healing

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
)

// Элементы, среди которых ищет живая эвристика.
const liveCandidates = "input,button,a,select,textarea,label"

const maxLiveSnippet = 60

var scoredAttrs = []string{"id", "name", "placeholder", "aria-label", "title", "alt", "value"}

// FindAlternativeSelectorLive ищет подходящий по подсказке интерактивный
// элемент на живой странице. Отсутствие совпадения не ошибка: ok == false.
func FindAlternativeSelectorLive(ctx context.Context, page browser.Page, hint string) (string, bool, error) {
	if hint == "" {
		return "", false, nil
	}

	elements, err := page.QueryElements(ctx, "", liveCandidates)
	if err != nil {
		return "", false, fmt.Errorf("сбор кандидатов: %w", err)
	}

	sel, ok := ScoreCandidates(elements, hint)
	return sel, ok, nil
}

// ScoreCandidates выбирает элемент с наибольшим счетом (при равенстве первый)
// и строит для него селектор: #id, затем tag[name], затем классы, затем текст.
func ScoreCandidates(elements []browser.ElementInfo, hint string) (string, bool) {
	if hint == "" {
		return "", false
	}
	needle := strings.ToLower(hint)

	best, bestScore := -1, 0
	for i, el := range elements {
		if s := score(el, needle); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return "", false
	}
	return liveSelector(elements[best])
}

func score(el browser.ElementInfo, needle string) int {
	s := 0
	for _, name := range scoredAttrs {
		v := strings.ToLower(el.Attr(name))
		switch {
		case v == "":
		case v == needle:
			s += 20
		case strings.Contains(v, needle):
			s += 10
		}
	}

	text := strings.ToLower(strings.TrimSpace(el.Text))
	switch {
	case text == needle:
		s += 15
	case strings.Contains(text, needle):
		s += 7
	}
	return s
}

func liveSelector(el browser.ElementInfo) (string, bool) {
	tag := strings.ToLower(el.Tag)

	if id := el.Attr("id"); id != "" {
		return "#" + browser.EscapeIdent(id), true
	}
	if name := el.Attr("name"); name != "" {
		return attrSelector(tag, "name", name), true
	}
	if classes := strings.Fields(el.Attr("class")); len(classes) > 0 {
		return classSelector(tag, classes), true
	}

	for _, line := range strings.Split(el.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return tag + `:has-text("` + escapeAttr(truncate(line, maxLiveSnippet)) + `")`, true
		}
	}
	return "", false
}
