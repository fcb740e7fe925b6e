// Package browser описывает страницу браузера как набор возможностей,
// которыми пользуются движки лечения селекторов и визуальных проверок,
// и реализует его поверх playwright-go.
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Page описывает страницу как непрозрачный интерфейс. Движки не зависят от внутренностей
// конкретной библиотеки автоматизации, только от этих операций.
type Page interface {
	// Count возвращает количество элементов, найденных селектором прямо сейчас.
	Count(ctx context.Context, selector string) (int, error)
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, text string) error
	IsVisible(ctx context.Context, selector string) (bool, error)
	// WaitVisible ждет видимости первого совпадения; по истечении timeout
	// возвращает *TimeoutError.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	WaitForLoadState(ctx context.Context, state string) error
	Content(ctx context.Context) (string, error)
	// Screenshot делает PNG снимок элемента, либо всей страницы при пустом селекторе.
	Screenshot(ctx context.Context, selector string, opts ScreenshotOptions) ([]byte, error)
	// QueryElements возвращает элементы, подходящие под selector внутри первого
	// совпадения scope (пустой scope означает весь документ), в порядке документа.
	QueryElements(ctx context.Context, scope, selector string) ([]ElementInfo, error)
	Info(ctx context.Context) (PageInfo, error)
}

type ScreenshotOptions struct {
	FullPage          bool
	DisableAnimations bool
}

// ElementInfo содержит атрибуты и текст элемента, собранные на странице.
type ElementInfo struct {
	Tag     string
	Text    string // textContent без крайних пробелов
	Attrs   map[string]string
	Visible bool
}

func (e ElementInfo) Attr(name string) string {
	return e.Attrs[name]
}

type PageInfo struct {
	URL       string
	Viewport  ViewportBounds
	UserAgent string
}

type ViewportBounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type PlaywrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    *PlaywrightPage
	cfg     Config
	mu      sync.RWMutex
}

type Config struct {
	Name            string // chromium, firefox, webkit
	Headless        bool
	UserDataDir     string
	Timeout         time.Duration
	NavigateTimeout time.Duration
	ViewportWidth   int
	ViewportHeight  int
	BaseURL         string
	ExtraHeaders    map[string]string
}
