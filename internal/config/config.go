package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cfg собирается один раз при старте процесса и передается компонентам явно.
// Движки лечения и визуальных проверок переменные окружения не читают.
type Cfg struct {
	App        App
	Database   Database
	Logger     Logger
	OpenAI     OpenAI
	Browser    Browser
	Visual     Visual
	Migrations Migrations
}

type App struct {
	Env          string // имя окружения для слоя environmentConfigs
	BaseURL      string
	CI           bool
	SecretHeader string // имя заголовка автоматизации
	SecretValue  string
	TestDataDir  string
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// Enabled сообщает, настроено ли хранилище результатов.
func (d Database) Enabled() bool {
	return d.Host != ""
}

// DSN строка подключения для gorm/postgres.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL строка подключения для golang-migrate.
func (d Database) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type Migrations struct {
	Path string
}

type Logger struct {
	Env   string
	Level string
}

type OpenAI struct {
	KeyAI             string
	Model             string
	MaxTokens         int
	RequestsPerMinute int
}

type Browser struct {
	Name            string // chromium, firefox, webkit
	Headless        bool
	UserDataDir     string
	Timeout         time.Duration
	NavigateTimeout time.Duration
	ViewportWidth   int
	ViewportHeight  int
}

type Visual struct {
	ConfigPath    string // YAML поверх встроенной конфигурации
	BaselineDir   string
	ComparisonDir string
	SnapshotDir   string
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		App: App{
			Env:          env("ENV", "development"),
			BaseURL:      firstEnv("BASE_URL", "PROD_BASE_URL", "QA_BASE_URL"),
			CI:           envBool("CI") || envBool("GITHUB_ACTIONS") || os.Getenv("JENKINS_URL") != "",
			SecretHeader: env("AUTOMATION_SECRET_HEADER", "X-Automation-Secret"),
			SecretValue:  os.Getenv("AUTOMATION_SECRET"),
			TestDataDir:  env("TEST_DATA_DIR", "test-data"),
		},
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Logger: Logger{
			Env:   env("LOG_ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
		},
		OpenAI: OpenAI{
			KeyAI:             os.Getenv("OPENAI_API_KEY"),
			Model:             env("OPENAI_MODEL", "gpt-4o"),
			MaxTokens:         envInt("OPENAI_MAX_TOKENS", 300),
			RequestsPerMinute: envInt("OPENAI_RPM", 30),
		},
		Browser: Browser{
			Name:            strings.ToLower(env("BROWSER", "chromium")),
			Headless:        envBool("HEADLESS"),
			UserDataDir:     os.Getenv("PW_USER_DATA_DIR"),
			Timeout:         envDuration("ACTION_TIMEOUT", 30*time.Second),
			NavigateTimeout: envDuration("NAVIGATE_TIMEOUT", 60*time.Second),
			ViewportWidth:   envInt("VIEWPORT_WIDTH", 1280),
			ViewportHeight:  envInt("VIEWPORT_HEIGHT", 720),
		},
		Visual: Visual{
			ConfigPath:    os.Getenv("VISUAL_CONFIG"),
			BaselineDir:   env("VISUAL_BASELINE_DIR", "test-results/visual-baselines"),
			ComparisonDir: env("VISUAL_COMPARISON_DIR", "test-results/visual-comparisons"),
			SnapshotDir:   env("SNAPSHOT_DIR", "snapshots"),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
	}

	switch cfg.Browser.Name {
	case "chromium", "firefox", "webkit":
	default:
		return nil, fmt.Errorf("неизвестный браузер %q: ожидается chromium, firefox или webkit", cfg.Browser.Name)
	}

	return cfg, nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if ms, err := strconv.Atoi(v); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}
