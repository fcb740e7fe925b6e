// Package llm предлагает селектор через OpenAI, когда детерминированные
// стратегии лечения не нашли элемент. Разметка перед отправкой очищается
// от данных пациента, запросы ограничены по частоте и токенам.
package llm

import (
	"errors"
	"time"
)

// ErrNoSuggestion возвращается, когда модель не предложила пригодный селектор.
var ErrNoSuggestion = errors.New("no selector suggestion")

type Config struct {
	APIKey            string
	Model             string
	MaxTokens         int
	RequestsPerMinute int
	TokensPerHour     int
	// После MaxFailures сбоев подряд запросы не отправляются ResetTimeout.
	MaxFailures  int
	ResetTimeout time.Duration
	// BaseURL переопределяет адрес API (прокси, тесты).
	BaseURL string
}

// Suggestion это ответ модели в JSON.
type Suggestion struct {
	Selector   string  `json:"selector"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}
