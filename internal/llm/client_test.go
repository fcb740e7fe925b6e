package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func completionServer(t *testing.T, content string, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(seen))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  openai.GPT4o,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 120, CompletionTokens: 12, TotalTokens: 132},
		}))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, zaptest.NewLogger(t))
}

func TestSuggestSelector(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := completionServer(t, `{"selector": "input#user_login", "confidence": 0.9, "reason": "id"}`, &seen)
	c := newTestClient(t, srv)

	markup := `<form><label>Email ann@example.org</label><input id="user_login" value="ann@example.org"></form>`
	got, err := c.SuggestSelector(context.Background(), markup, "login")
	require.NoError(t, err)
	assert.Equal(t, "input#user_login", got)

	require.Len(t, seen.Messages, 2)
	assert.Equal(t, openai.GPT4o, seen.Model)
	assert.Equal(t, 300, seen.MaxTokens)
	user := seen.Messages[1].Content
	assert.Contains(t, user, "Подсказка: login")
	assert.Contains(t, user, `id="user_login"`)
	assert.NotContains(t, user, "ann@example.org", "данные пациента не уходят в запрос")
}

func TestSuggestSelectorNoSuggestion(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := completionServer(t, `{"selector": "", "confidence": 0, "reason": "нет такого элемента"}`, &seen)
	c := newTestClient(t, srv)

	_, err := c.SuggestSelector(context.Background(), "<p>пусто</p>", "logout")
	assert.ErrorIs(t, err, ErrNoSuggestion)
}

func TestSuggestSelectorAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).SuggestSelector(context.Background(), "<p/>", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSuggestion)
}

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"plain json", `{"selector": "#email"}`, "#email", false},
		{"fenced", "```json\n{\"selector\": \"button:has-text(\\\"Sign in\\\")\"}\n```", `button:has-text("Sign in")`, false},
		{"empty selector", `{"selector": "  "}`, "", true},
		{"url is not a selector", `{"selector": "https://portal.test/login"}`, "", true},
		{"not json", `use #email`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := parseSuggestion(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Selector)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, 100)

	ctx := context.Background()
	require.NoError(t, rl.Wait(ctx, 40))
	require.NoError(t, rl.Wait(ctx, 60))

	requests, tokens := rl.Stats()
	assert.Zero(t, requests)
	assert.Zero(t, tokens)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx, 1), "третий запрос в ту же минуту не проходит")
}

func TestRateLimiterCapsEstimate(t *testing.T) {
	rl := NewRateLimiter(10, 50)
	assert.NoError(t, rl.Wait(context.Background(), 500), "оценка больше бюджета урезается до него")
}
