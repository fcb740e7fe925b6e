package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает запросы в минуту и токены в час двумя token bucket.
type RateLimiter struct {
	requests *rate.Limiter
	tokens   *rate.Limiter
}

func NewRateLimiter(requestsPerMinute, tokensPerHour int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if tokensPerHour <= 0 {
		tokensPerHour = 90000
	}
	return &RateLimiter{
		requests: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
		tokens:   rate.NewLimiter(rate.Limit(float64(tokensPerHour)/3600), tokensPerHour),
	}
}

// Wait блокируется, пока не освободятся запрос и estimatedTokens токенов.
// Оценка больше часового бюджета урезается до него.
func (rl *RateLimiter) Wait(ctx context.Context, estimatedTokens int) error {
	if err := rl.requests.Wait(ctx); err != nil {
		return fmt.Errorf("лимит запросов: %w", err)
	}
	n := min(max(estimatedTokens, 1), rl.tokens.Burst())
	if err := rl.tokens.WaitN(ctx, n); err != nil {
		return fmt.Errorf("лимит токенов: %w", err)
	}
	return nil
}

// Stats возвращает доступные сейчас запросы и токены.
func (rl *RateLimiter) Stats() (requests, tokens int) {
	now := time.Now()
	return int(rl.requests.TokensAt(now)), int(rl.tokens.TokensAt(now))
}
