// Package commands содержит cobra команды CLI. Каждая команда открывает
// страницу через Env.OpenPage и работает с движками лечения и визуальных проверок.
package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/config"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/database"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/healing"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/visual"
)

// PageOpener открывает страницу по адресу и возвращает функцию закрытия.
type PageOpener func(ctx context.Context, url string) (browser.Page, func(), error)

// ResultStore пишет и читает историю запусков.
type ResultStore interface {
	healing.Recorder
	visual.Recorder
	ListHealingEvents(ctx context.Context, limit int, healedOnly bool) ([]database.HealingEvent, error)
	ListVisualResults(ctx context.Context, limit int, failedOnly bool) ([]database.VisualResult, error)
}

type Env struct {
	Cfg      *config.Cfg
	Log      *zap.Logger
	OpenPage PageOpener
	// Suggester и Results необязательны.
	Suggester healing.Suggester
	Results   ResultStore
}

func (e *Env) open(ctx context.Context, url string) (browser.Page, func(), error) {
	if url == "" {
		url = e.Cfg.App.BaseURL
	}
	if url == "" {
		return nil, nil, fmt.Errorf("адрес страницы не задан: укажите --url или BASE_URL")
	}
	return e.OpenPage(ctx, url)
}

func (e *Env) healer(rec healing.Recorder) *healing.Healer {
	opts := []healing.Option{healing.WithRecorder(rec)}
	if e.Suggester != nil {
		opts = append(opts, healing.WithSuggester(e.Suggester))
	}
	return healing.New(healing.NewSnapshotStore(e.Cfg.Visual.SnapshotDir), e.Log, opts...)
}

func (e *Env) engine(page browser.Page) *visual.Engine {
	cfg := visual.EngineConfig{
		BaselineDir:   e.Cfg.Visual.BaselineDir,
		ComparisonDir: e.Cfg.Visual.ComparisonDir,
		Env:           e.environment(),
	}
	if e.Results != nil {
		cfg.Recorder = e.Results
	}
	return visual.NewEngine(page, cfg, e.Log)
}

func (e *Env) environment() visual.Environment {
	return visual.Environment{
		Browser: e.Cfg.Browser.Name,
		Name:    e.Cfg.App.Env,
		CI:      e.Cfg.App.CI,
	}
}
