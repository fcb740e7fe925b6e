package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		selector string
		want     SelectorKind
	}{
		{"#username", KindCSS},
		{"input[name=\"username\"]", KindCSS},
		{"//h2[contains(text(),'Make an appointment')]", KindXPath},
		{"(//button)[2]", KindXPath},
		{"xpath=//div", KindXPath},
		{"text=Sign in", KindText},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.selector))
		})
	}
}

func TestLooksLikeSelector(t *testing.T) {
	selectors := []string{
		".login-form", "#password", "input[type=\"email\"]", "//div", "text=Sign in",
		"role=button", "button", "p::first-line", "form, .login", "div:has(span)", "a:text(\"Go\")",
	}
	for _, s := range selectors {
		assert.Truef(t, LooksLikeSelector(s), "ожидался селектор: %s", s)
	}

	keys := []string{"", "login-button", "username-field", "show-password-button", "https://portal.test"}
	for _, k := range keys {
		assert.Falsef(t, LooksLikeSelector(k), "ожидался ключ: %s", k)
	}
}

func TestNormalizeSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		changed bool
	}{
		{`button:contains("Sign in")`, `button:has-text("Sign in")`, true},
		{`a:contains('Forgot')`, `a:has-text("Forgot")`, true},
		{`span:contains(Help)`, `span:has-text("Help")`, true},
		{`button: Войти`, `button:has-text("Войти")`, true},
		{`button:has-text("Sign in")`, `button:has-text("Sign in")`, false},
		{`a:hover`, `a:hover`, false},
		{`input[aria-label="Date: start"]`, `input[aria-label="Date: start"]`, false},
		{`//a[text()='x: y']`, `//a[text()='x: y']`, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, changed := NormalizeSelector(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestValidateSelector(t *testing.T) {
	require.NoError(t, ValidateSelector("#login"))
	require.Error(t, ValidateSelector(""))
	require.Error(t, ValidateSelector("https://portal.test/login"))
	require.Error(t, ValidateSelector("file:///etc/passwd"))
}

func TestParseElements(t *testing.T) {
	raw := []interface{}{
		map[string]interface{}{
			"tag":     "input",
			"text":    "",
			"visible": true,
			"attrs":   map[string]interface{}{"name": "username", "placeholder": "Username"},
		},
		"garbage",
	}

	elems := parseElements(raw)
	require.Len(t, elems, 1)
	assert.Equal(t, "input", elems[0].Tag)
	assert.Equal(t, "Username", elems[0].Attr("placeholder"))
	assert.True(t, elems[0].Visible)

	assert.Empty(t, parseElements(nil))
}

func TestEscapeIdent(t *testing.T) {
	tests := map[string]string{
		"login-form": "login-form",
		"-":          `\-`,
		"-1x":        `-\31 x`,
		"a.b":        `a\.b`,
		"1st-visit":  `\31 st-visit`,
		"ng:model":   `ng\:model`,
	}
	for in, want := range tests {
		assert.Equal(t, want, EscapeIdent(in), in)
	}
}
