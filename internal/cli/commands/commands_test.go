package commands

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser/browsertest"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/config"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/database"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/healing"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/visual"
)

const loginHTML = `<html><body>
<form id="login-form">
  <input placeholder="Username">
  <input type="password" placeholder="Password">
  <button class="btn">Sign in</button>
</form>
</body></html>`

// quickVisual ускоряет повторы: одна попытка без проверки стабильности.
const quickVisual = `
environmentConfigs:
  staging:
    maxRetries: 1
    waitBetweenAttempts: 10ms
    stabilityChecks: false
`

type storeStub struct {
	healing []healing.Event
	visual  []visual.Outcome
}

func (s *storeStub) RecordHealing(_ context.Context, ev healing.Event) error {
	s.healing = append(s.healing, ev)
	return nil
}

func (s *storeStub) RecordVisual(_ context.Context, out visual.Outcome) error {
	s.visual = append(s.visual, out)
	return nil
}

func (s *storeStub) ListHealingEvents(context.Context, int, bool) ([]database.HealingEvent, error) {
	return []database.HealingEvent{{
		Action: "fill", OriginalSelector: "#username", HealedSelector: `input[placeholder="Username"]`,
		Strategy: healing.StrategySnapshot, Healed: true, DurationMs: 42,
		CreatedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
	}}, nil
}

func (s *storeStub) ListVisualResults(context.Context, int, bool) ([]database.VisualResult, error) {
	return []database.VisualResult{{
		TestID: "login-test-usernamefi-197479", Strategy: "standard", Passed: false,
		DiffPixels: 120, DiffRatio: 0.0325, ArtifactDir: "test-results/visual-comparisons",
	}}, nil
}

func newTestEnv(t *testing.T, page *browsertest.Page) *Env {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "visual.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(quickVisual), 0o644))

	return &Env{
		Cfg: &config.Cfg{
			App:     config.App{Env: "staging", BaseURL: "https://portal.test"},
			Browser: config.Browser{Name: "chromium"},
			Visual: config.Visual{
				ConfigPath:    configPath,
				BaselineDir:   filepath.Join(dir, "baselines"),
				ComparisonDir: filepath.Join(dir, "comparisons"),
				SnapshotDir:   filepath.Join(dir, "snapshots"),
			},
		},
		Log: zaptest.NewLogger(t),
		OpenPage: func(_ context.Context, url string) (browser.Page, func(), error) {
			page.URL = url
			return page, func() {}, nil
		},
	}
}

func execute(t *testing.T, env *Env, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "e2e", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(NewHealCommand(env), NewVisualCommand(env), NewResultsCommand(env),
		NewSnapshotCommand(env), NewSelectorCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHealFillHealsStaleSelector(t *testing.T) {
	page := browsertest.New(loginHTML)
	env := newTestEnv(t, page)
	store := &storeStub{}
	env.Results = store

	out, err := execute(t, env, "heal", "fill", "#username", "jdoe", "--hint", "username", "--snapshot", "login")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{`input[placeholder="Username"]`: "jdoe"}, page.Fills)
	assert.Contains(t, out, "селектор вылечен")
	assert.Contains(t, out, `input[placeholder="Username"]`)
	assert.Contains(t, out, filepath.Join(env.Cfg.Visual.SnapshotDir, "login.html"))

	require.Len(t, store.healing, 1)
	assert.Equal(t, healing.StrategySnapshot, store.healing[0].Strategy)
}

func TestHealClickOriginal(t *testing.T) {
	page := browsertest.New(loginHTML)
	out, err := execute(t, newTestEnv(t, page), "heal", "click", "button.btn")
	require.NoError(t, err)
	assert.Equal(t, []string{"button.btn"}, page.Clicks)
	assert.Contains(t, out, "исходный селектор")
	assert.Equal(t, "https://portal.test", page.URL, "адрес по умолчанию из BASE_URL")
}

func TestHealClickNotRecovered(t *testing.T) {
	page := browsertest.New(loginHTML)
	out, err := execute(t, newTestEnv(t, page), "heal", "click", "#logout", "--hint", "logout")
	require.Error(t, err)

	var recErr *healing.RecoveryError
	assert.ErrorAs(t, err, &recErr)
	assert.Contains(t, out, "Элемент не найден")
	assert.Empty(t, page.Clicks)
}

func TestOpenRequiresURL(t *testing.T) {
	env := newTestEnv(t, browsertest.New(loginHTML))
	env.Cfg.App.BaseURL = ""
	_, err := execute(t, env, "snapshot", "--name", "x")
	assert.ErrorContains(t, err, "адрес страницы не задан")
}

func TestSnapshotCommand(t *testing.T) {
	env := newTestEnv(t, browsertest.New(loginHTML))
	out, err := execute(t, env, "snapshot", "--name", "login page", "--url", "https://portal.test/login")
	require.NoError(t, err)

	path := filepath.Join(env.Cfg.Visual.SnapshotDir, "login-page.html")
	assert.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, loginHTML, string(data))
}

func TestVisualPageBaselineThenPass(t *testing.T) {
	page := browsertest.New(loginHTML)
	env := newTestEnv(t, page)
	store := &storeStub{}
	env.Results = store

	for i := 0; i < 2; i++ {
		out, err := execute(t, env, "visual", "page", "--test-name", "Login page")
		require.NoError(t, err)
		assert.Contains(t, out, "login-page")
		assert.Contains(t, out, "(категория login)")
		assert.Contains(t, out, "Итого: 1, прошло 1, провалено 0")
	}

	require.Len(t, store.visual, 2)
	assert.True(t, store.visual[0].BaselineCreated)
	assert.False(t, store.visual[1].BaselineCreated)
	assert.True(t, store.visual[1].Passed)
}

func TestVisualElementMismatchFails(t *testing.T) {
	page := browsertest.New(loginHTML)
	env := newTestEnv(t, page)

	_, err := execute(t, env, "visual", "element", "button.btn", "--test-name", "Dashboard smoke", "--category", "navigation")
	require.NoError(t, err)

	page.SetShots("button.btn", browsertest.SolidPNG(40, 20, color.Black))
	out, err := execute(t, env, "visual", "element", "button.btn", "--test-name", "Dashboard smoke",
		"--category", "navigation", "--threshold", "0.1")
	require.Error(t, err)
	assert.ErrorIs(t, err, visual.ErrVisualMismatch)
	assert.Contains(t, out, "провалено 1")
}

func TestVisualRequiresTestName(t *testing.T) {
	_, err := execute(t, newTestEnv(t, browsertest.New(loginHTML)), "visual", "page")
	assert.ErrorContains(t, err, "test-name")
}

func TestOverridesOnlyChangedFlags(t *testing.T) {
	cmd := NewVisualCommand(&Env{})
	f := visualFlags{threshold: 0.3, multi: true}
	assert.Equal(t, visual.Overrides{}, overrides(cmd, f))

	require.NoError(t, cmd.PersistentFlags().Set("threshold", "0.3"))
	o := overrides(cmd, f)
	require.NotNil(t, o.Threshold)
	assert.Equal(t, 0.3, *o.Threshold)
	assert.Nil(t, o.ResolutionIndependent)
}

func TestResultsCommands(t *testing.T) {
	env := newTestEnv(t, browsertest.New(loginHTML))

	_, err := execute(t, env, "results", "healing")
	assert.ErrorIs(t, err, errNoResultStore)

	env.Results = &storeStub{}
	out, err := execute(t, env, "results", "healing", "--healed")
	require.NoError(t, err)
	assert.Contains(t, out, "Лечение селекторов: 1")
	assert.Contains(t, out, "селектор вылечен")
	assert.Contains(t, out, "2026-10-17 09:30:00 (42ms)")

	out, err = execute(t, env, "results", "visual", "--failed", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "login-test-usernamefi-197479")
	assert.Contains(t, out, "120 px (3.25%)")
}

func TestSelectorCheck(t *testing.T) {
	out, err := execute(t, nil, "selector", "check", `button:contains("Sign in")`)
	require.NoError(t, err)
	assert.Contains(t, out, "css")
	assert.Contains(t, out, `button:has-text("Sign in")`)

	_, err = execute(t, nil, "selector", "check", "https://portal.test")
	assert.Error(t, err)
}
