package visual

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverridesApplyOnlyNamedFields(t *testing.T) {
	base := BaseOptions()
	got := Overrides{Threshold: Float(0.4), ScaleToFit: Bool(true)}.Apply(base)

	assert.Equal(t, 0.4, got.Threshold)
	assert.True(t, got.ScaleToFit)
	assert.Equal(t, base.MaxDiffPixels, got.MaxDiffPixels)
	assert.Equal(t, base.MaxRetries, got.MaxRetries)
	assert.Equal(t, base.WaitBetweenAttempts, got.WaitBetweenAttempts)
}

func TestOverridesMerge(t *testing.T) {
	low := Overrides{Threshold: Float(0.1), MaxRetries: Int(2)}
	top := Overrides{Threshold: Float(0.3)}

	merged := low.Merge(top)
	require.NotNil(t, merged.Threshold)
	require.NotNil(t, merged.MaxRetries)
	assert.Equal(t, 0.3, *merged.Threshold)
	assert.Equal(t, 2, *merged.MaxRetries)
}

func TestResolvePrecedence(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name          string
		category      string
		env           Environment
		explicit      Overrides
		wantThreshold float64
		wantRetries   int
		wantPixels    int
	}{
		{"development by default", "login", Environment{}, Overrides{}, 0.2, 2, 250000},
		{"explicit wins", "login", Environment{}, Overrides{Threshold: Float(0.05)}, 0.05, 2, 250000},
		{"browser under environment", "appointment", Environment{Browser: "webkit", Name: "staging"}, Overrides{}, 0.1, 3, 1500},
		{"production", "navigation", Environment{Name: "Production"}, Overrides{}, 0.05, 5, 1500},
		{"ci layer last", "navigation", Environment{Name: "production", CI: true}, Overrides{}, 0.15, 3, 1500},
		{"unknown category", "billing", Environment{Browser: "chromium", Name: "staging"}, Overrides{}, 0.1, 3, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := cfg.Resolve(tt.category, tt.env, tt.explicit)
			assert.Equal(t, tt.category, r.Category)
			assert.Equal(t, tt.wantThreshold, r.Options.Threshold)
			assert.Equal(t, tt.wantRetries, r.Options.MaxRetries)
			assert.Equal(t, tt.wantPixels, r.Options.MaxDiffPixels)
		})
	}
}

func TestResolveLoginCategory(t *testing.T) {
	r := DefaultConfig().Resolve("login", Environment{}, Overrides{})

	assert.True(t, r.Options.MultiStrategy())
	assert.True(t, r.Options.AcceptOnExhaustion)
	assert.Equal(t, 0.2, r.Options.MaxDiffPixelRatio)
	assert.Len(t, r.Elements, 12)
	assert.Contains(t, r.Elements["password-field"], `input[type="password"]`)
}

func TestResolveElementsAreCopied(t *testing.T) {
	cfg := DefaultConfig()
	r := cfg.Resolve("navigation", Environment{}, Overrides{})
	r.Elements["main-nav"] = "changed"

	assert.Equal(t, `nav[role="navigation"]`, cfg.TestConfigs["navigation"].Elements["main-nav"])
	assert.NotNil(t, cfg.Resolve("billing", Environment{}, Overrides{}).Elements)
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visual.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
global:
  waitBetweenAttempts: 500ms
testConfigs:
  navigation:
    threshold: 0.25
    elements:
      sidebar: aside.sidebar
  registration:
    maxDiffPixels: 42
environmentConfigs:
  staging:
    maxRetries: 7
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	nav := cfg.Resolve("navigation", Environment{Name: "staging"}, Overrides{})
	assert.Equal(t, 0.1, nav.Options.Threshold, "окружение применяется после категории")
	assert.Equal(t, 7, nav.Options.MaxRetries)
	assert.Equal(t, 1500, nav.Options.MaxDiffPixels, "не названные поля категории сохраняются")
	assert.Equal(t, 500*time.Millisecond, nav.Options.WaitBetweenAttempts)
	assert.Equal(t, map[string]string{"sidebar": "aside.sidebar"}, nav.Elements)

	reg := cfg.Resolve("registration", Environment{}, Overrides{})
	assert.Equal(t, 42, reg.Options.MaxDiffPixels)

	login := cfg.Resolve("login", Environment{}, Overrides{})
	assert.Len(t, login.Elements, 12)
}

func TestLoadConfigErrors(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("global: [1, 2"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}

func TestCategoryFromTestName(t *testing.T) {
	tests := map[string]string{
		"Login Test":                      "login",
		"should reject bad credentials":   "login",
		"Schedule an appointment":         "appointment",
		"Main menu renders":               "navigation",
		"User signup flow":                "registration",
		"Dashboard widgets":               DefaultCategory,
		"booking after password reset":    "login",
		"NAVIGATION breadcrumbs collapse": "navigation",
	}
	for name, want := range tests {
		assert.Equal(t, want, CategoryFromTestName(name), name)
	}
}
