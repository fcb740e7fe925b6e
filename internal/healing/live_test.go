package healing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser/browsertest"
)

func el(tag, text string, attrs ...string) browser.ElementInfo {
	info := browser.ElementInfo{Tag: tag, Text: text, Attrs: map[string]string{}}
	for i := 0; i+1 < len(attrs); i += 2 {
		info.Attrs[attrs[i]] = attrs[i+1]
	}
	return info
}

func TestScoreCandidates(t *testing.T) {
	tests := []struct {
		name     string
		elements []browser.ElementInfo
		hint     string
		want     string
	}{
		{
			name: "exact attribute beats substring",
			elements: []browser.ElementInfo{
				el("input", "", "name", "username-old"),
				el("input", "", "placeholder", "Username", "class", "field wide"),
			},
			hint: "username",
			want: "input.field.wide",
		},
		{
			name: "first wins ties",
			elements: []browser.ElementInfo{
				el("a", "Help", "name", "help-top"),
				el("a", "Help", "name", "help-bottom"),
			},
			hint: "help",
			want: `a[name="help-top"]`,
		},
		{
			name:     "id preferred over name",
			elements: []browser.ElementInfo{el("button", "Log in", "id", "login-btn", "name", "submit")},
			hint:     "log in",
			want:     "#login-btn",
		},
		{
			name:     "text snippet from first line",
			elements: []browser.ElementInfo{el("button", "Sign in\n   now")},
			hint:     "sign",
			want:     `button:has-text("Sign in")`,
		},
		{
			name:     "alt and value are scored",
			elements: []browser.ElementInfo{el("label", ""), el("input", "", "value", "Continue", "class", "cta")},
			hint:     "continue",
			want:     "input.cta",
		},
		{
			name:     "nothing scores",
			elements: []browser.ElementInfo{el("input", "", "type", "text")},
			hint:     "password",
		},
		{
			name:     "empty hint",
			elements: []browser.ElementInfo{el("input", "", "id", "x")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ScoreCandidates(tt.elements, tt.hint)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindAlternativeSelectorLive(t *testing.T) {
	page := browsertest.New(`<div><a href="#">Forgot password?</a><span>forgot</span></div>`)

	got, ok, err := FindAlternativeSelectorLive(context.Background(), page, "forgot")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `a:has-text("Forgot password?")`, got)
}
