package visual

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoryConfig задает слой категории теста и ее карту элементов.
type CategoryConfig struct {
	Overrides `yaml:",inline"`
	Elements  map[string]string `yaml:"elements,omitempty"`
}

type Config struct {
	Global             Overrides                 `yaml:"global"`
	TestConfigs        map[string]CategoryConfig `yaml:"testConfigs"`
	BrowserConfigs     map[string]Overrides      `yaml:"browserConfigs"`
	EnvironmentConfigs map[string]Overrides      `yaml:"environmentConfigs"`
}

// Environment описывает, где выполняется тест. Берется из config.Cfg один раз.
type Environment struct {
	Browser string
	Name    string
	CI      bool
}

type Resolved struct {
	Category string
	Options  Options
	Elements map[string]string
}

// DefaultConfig возвращает встроенную конфигурацию портала.
func DefaultConfig() *Config {
	return &Config{
		Global: Overrides{
			Threshold:       Float(0.1),
			MaxDiffPixels:   Int(1000),
			Animations:      String(AnimationsDisabled),
			Mode:            String(ModeRGB),
			MaxRetries:      Int(3),
			StabilityChecks: Bool(true),
		},
		TestConfigs: map[string]CategoryConfig{
			"login": {
				Overrides: Overrides{
					Threshold:             Float(0.3),
					MaxDiffPixels:         Int(250000),
					StabilityChecks:       Bool(true),
					MaxDiffPixelRatio:     Float(0.2),
					ResolutionIndependent: Bool(true),
					ScaleToFit:            Bool(true),
					FocusOnContent:        Bool(true),
					AcceptOnExhaustion:    Bool(true),
				},
				Elements: map[string]string{
					"login-form":           `form, .login-form, [data-testid="login-form"], .form-container, #login-form`,
					"username-field":       `input[name="username"], input[type="email"], #username, [data-testid="username"], [placeholder*="username"], [placeholder*="email"]`,
					"password-field":       `input[name="password"], input[type="password"], #password, [data-testid="password"], [placeholder*="password"]`,
					"login-button":         `button[type="submit"], .login-button, [data-testid="login-button"], button:has-text("Sign in"), button:has-text("Login"), .btn-login`,
					"show-password-button": `button[aria-label="Show password"], .show-password, [data-testid="show-password"], .password-toggle`,
					"forgot-password-link": `a[href*="forgot"], .forgot-password, [data-testid="forgot-password"], a:has-text("Forgot")`,
					"language-selector":    `.language-selector, [data-testid="language-selector"], select[name="language"], .language-dropdown`,
					"logo":                 `.logo, [alt*="logo"], .brand, [data-testid="logo"], .header-logo`,
					"ios-app-link":         `a[href*="apple"], a[href*="ios"], [data-testid="ios-app"], .ios-download`,
					"android-app-link":     `a[href*="google"], a[href*="android"], [data-testid="android-app"], .android-download`,
					"error-message":        `.error-message, [role="alert"], .alert-error, [data-testid="error-message"], .error, .invalid-feedback`,
					"success-message":      `.success-message, .alert-success, [data-testid="success-message"], .success, .valid-feedback`,
				},
			},
			"appointment": {
				Overrides: Overrides{
					Threshold:     Float(0.1),
					MaxDiffPixels: Int(1200),
				},
				Elements: map[string]string{
					"appointment-header":  `//h1[text()="Schedule an Appointment"]`,
					"reason-section":      `//div[@id="reason-select-id"]`,
					"search-availability": `//button[contains(@class,"_submit-button_agx3b_25")]`,
				},
			},
			"navigation": {
				Overrides: Overrides{
					Threshold:     Float(0.12),
					MaxDiffPixels: Int(1500),
				},
				Elements: map[string]string{
					"main-nav":    `nav[role="navigation"]`,
					"user-menu":   `.user-menu`,
					"breadcrumbs": `.breadcrumbs`,
				},
			},
		},
		BrowserConfigs: map[string]Overrides{
			"chromium": {Threshold: Float(0.08), MaxDiffPixels: Int(800)},
			"firefox":  {Threshold: Float(0.12), MaxDiffPixels: Int(1200)},
			"webkit":   {Threshold: Float(0.15), MaxDiffPixels: Int(1500)},
		},
		EnvironmentConfigs: map[string]Overrides{
			"development": {Threshold: Float(0.2), MaxRetries: Int(2)},
			"staging":     {Threshold: Float(0.1), MaxRetries: Int(3)},
			"production":  {Threshold: Float(0.05), MaxRetries: Int(5)},
			"ci":          {Threshold: Float(0.15), MaxRetries: Int(3), StabilityChecks: Bool(true)},
		},
	}
}

// LoadConfig читает YAML и накладывает его на встроенную конфигурацию.
// Пустой путь означает встроенную конфигурацию без изменений.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации визуальных проверок: %w", err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", path, err)
	}

	cfg.Overlay(&overlay)
	return cfg, nil
}

// Overlay накладывает other на c. Слои сливаются по ключам, карта элементов
// категории заменяется целиком, если other ее задает.
func (c *Config) Overlay(other *Config) {
	c.Global = c.Global.Merge(other.Global)

	if c.TestConfigs == nil {
		c.TestConfigs = map[string]CategoryConfig{}
	}
	for name, tc := range other.TestConfigs {
		cur := c.TestConfigs[name]
		cur.Overrides = cur.Overrides.Merge(tc.Overrides)
		if tc.Elements != nil {
			cur.Elements = maps.Clone(tc.Elements)
		}
		c.TestConfigs[name] = cur
	}

	c.BrowserConfigs = overlayLayers(c.BrowserConfigs, other.BrowserConfigs)
	c.EnvironmentConfigs = overlayLayers(c.EnvironmentConfigs, other.EnvironmentConfigs)
}

func overlayLayers(dst, src map[string]Overrides) map[string]Overrides {
	if dst == nil {
		dst = map[string]Overrides{}
	}
	for name, layer := range src {
		dst[name] = dst[name].Merge(layer)
	}
	return dst
}

// Resolve сливает слои: базовые значения, global, категория, браузер,
// окружение, ci (только при env.CI), явные параметры вызова.
// Elements берется целиком из слоя категории.
func (c *Config) Resolve(category string, env Environment, explicit Overrides) Resolved {
	envName := strings.ToLower(env.Name)
	if envName == "" {
		envName = "development"
	}

	tc := c.TestConfigs[category]
	layers := []Overrides{
		c.Global,
		tc.Overrides,
		c.BrowserConfigs[strings.ToLower(env.Browser)],
		c.EnvironmentConfigs[envName],
	}
	if env.CI {
		layers = append(layers, c.EnvironmentConfigs["ci"])
	}
	layers = append(layers, explicit)

	opts := BaseOptions()
	for _, l := range layers {
		opts = l.Apply(opts)
	}

	elements := maps.Clone(tc.Elements)
	if elements == nil {
		elements = map[string]string{}
	}
	return Resolved{Category: category, Options: opts, Elements: elements}
}
