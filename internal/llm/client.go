package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/healing"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/sanitizer"
)

type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	sanitizer   *sanitizer.DataSanitizer
	rateLimiter *RateLimiter
	breaker     *circuitBreaker
	log         *zap.Logger
}

var _ healing.Suggester = (*Client)(nil)

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if log == nil {
		log = zap.NewNop()
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		sanitizer:   sanitizer.New(),
		rateLimiter: NewRateLimiter(cfg.RequestsPerMinute, cfg.TokensPerHour),
		breaker:     newCircuitBreaker(cfg.MaxFailures, cfg.ResetTimeout),
		log:         log.Named("llm"),
	}
}

// SuggestSelector отправляет модели очищенную разметку и подсказку.
func (c *Client) SuggestSelector(ctx context.Context, markup, hint string) (string, error) {
	prompt := userPrompt(c.sanitizer.SanitizeMarkup(markup), hint)

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	if err := c.breaker.allow(); err != nil {
		c.log.Debug("запрос к OpenAI пропущен", zap.String("hint", hint), zap.Error(err))
		return "", err
	}
	if err := c.rateLimiter.Wait(ctx, estimateTokens(c.maxTokens, systemPrompt, prompt)); err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	c.breaker.record(err)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			c.log.Warn("OpenAI вернул ошибку", zap.Int("status", apiErr.HTTPStatusCode), zap.String("message", apiErr.Message))
		}
		return "", fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: пустой ответ от OpenAI", ErrNoSuggestion)
	}

	s, err := parseSuggestion(resp.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}

	c.log.Info("модель предложила селектор",
		zap.String("hint", hint),
		zap.String("selector", s.Selector),
		zap.Float64("confidence", s.Confidence),
		zap.Int("tokens", resp.Usage.TotalTokens))
	return s.Selector, nil
}
