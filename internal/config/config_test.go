package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "BASE_URL", "PROD_BASE_URL", "QA_BASE_URL", "CI", "GITHUB_ACTIONS", "JENKINS_URL",
		"BROWSER", "HEADLESS", "ACTION_TIMEOUT", "DB_HOST", "VISUAL_BASELINE_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.False(t, cfg.App.CI)
	assert.Equal(t, "chromium", cfg.Browser.Name)
	assert.Equal(t, 30*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, "test-results/visual-baselines", cfg.Visual.BaselineDir)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("QA_BASE_URL", "https://qa.example.test")
	t.Setenv("JENKINS_URL", "http://jenkins")
	t.Setenv("BROWSER", "Firefox")
	t.Setenv("HEADLESS", "yes")
	t.Setenv("ACTION_TIMEOUT", "1500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://qa.example.test", cfg.App.BaseURL)
	assert.True(t, cfg.App.CI)
	assert.Equal(t, "firefox", cfg.Browser.Name)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1500*time.Millisecond, cfg.Browser.Timeout)
}

func TestLoadRejectsUnknownBrowser(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("BROWSER", "netscape")

	_, err := Load()
	require.Error(t, err)
}

func TestMissingError(t *testing.T) {
	err := error(&MissingError{Source: "login.data.yaml", Key: "admin"})
	assert.True(t, errors.Is(err, ErrConfigurationMissing))
	assert.Contains(t, err.Error(), `"admin"`)
}

func TestDatabaseURL(t *testing.T) {
	db := Database{Host: "localhost", Port: "5432", Name: "e2e", User: "u", Password: "p", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@localhost:5432/e2e?sslmode=disable", db.URL())
	assert.Contains(t, db.DSN(), "dbname=e2e")
}
