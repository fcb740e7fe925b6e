package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
)

// parseSuggestion разбирает JSON ответа. Модель иногда оборачивает его в ```json.
func parseSuggestion(content string) (Suggestion, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var s Suggestion
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return Suggestion{}, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	s.Selector = strings.TrimSpace(s.Selector)
	if s.Selector == "" {
		return s, fmt.Errorf("%w: %s", ErrNoSuggestion, s.Reason)
	}
	if err := browser.ValidateSelector(s.Selector); err != nil {
		return s, fmt.Errorf("%w: %v", ErrNoSuggestion, err)
	}
	return s, nil
}
