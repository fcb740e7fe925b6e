package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

func New(cfg Config) *PlaywrightBrowser {
	if cfg.Name == "" {
		cfg.Name = "chromium"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.NavigateTimeout == 0 {
		cfg.NavigateTimeout = 60 * time.Second // Navigate обычно дольше
	}
	if cfg.ViewportWidth == 0 || cfg.ViewportHeight == 0 {
		cfg.ViewportWidth, cfg.ViewportHeight = 1280, 720
	}

	return &PlaywrightBrowser{
		cfg: cfg,
	}
}

// getPage безопасно возвращает текущую страницу с read lock
func (b *PlaywrightBrowser) getPage() *PlaywrightPage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.page
}

func (b *PlaywrightBrowser) setPage(page playwright.Page) {
	page.SetDefaultTimeout(float64(b.cfg.Timeout.Milliseconds()))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = NewPlaywrightPage(page, b.cfg.Timeout)
}

func (b *PlaywrightBrowser) browserType(pw *playwright.Playwright) (playwright.BrowserType, error) {
	switch b.cfg.Name {
	case "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	}
	return nil, fmt.Errorf("неизвестный браузер %q", b.cfg.Name)
}

func (b *PlaywrightBrowser) viewport() *playwright.Size {
	return &playwright.Size{Width: b.cfg.ViewportWidth, Height: b.cfg.ViewportHeight}
}

func (b *PlaywrightBrowser) baseURL() *string {
	if b.cfg.BaseURL == "" {
		return nil
	}
	return playwright.String(b.cfg.BaseURL)
}

func (b *PlaywrightBrowser) launchPersistent(bt playwright.BrowserType) error {
	browserContext, err := bt.LaunchPersistentContext(b.cfg.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:         playwright.Bool(b.cfg.Headless),
		Viewport:         b.viewport(),
		BaseURL:          b.baseURL(),
		ExtraHttpHeaders: b.cfg.ExtraHeaders,
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.context = browserContext
	b.mu.Unlock()

	pages := browserContext.Pages()
	var page playwright.Page
	if len(pages) == 0 {
		page, err = browserContext.NewPage()
		if err != nil {
			return err
		}
	} else {
		page = pages[0]
	}

	b.setPage(page)
	return nil
}

func (b *PlaywrightBrowser) launchStandard(bt playwright.BrowserType) error {
	browser, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.cfg.Headless),
	})
	if err != nil {
		return err
	}

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:         b.viewport(),
		BaseURL:          b.baseURL(),
		ExtraHttpHeaders: b.cfg.ExtraHeaders,
	})
	if err != nil {
		_ = browser.Close()
		return err
	}

	b.mu.Lock()
	b.browser = browser
	b.context = browserContext
	b.mu.Unlock()

	page, err := browserContext.NewPage()
	if err != nil {
		return err
	}

	b.setPage(page)
	return nil
}

// Launch запускает драйвер и браузер, выбранный по имени в конфигурации.
// С UserDataDir используется постоянный профиль.
func (b *PlaywrightBrowser) Launch(ctx context.Context) error {
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("запуск playwright: %w", err)
	}
	b.pw = pw

	bt, err := b.browserType(pw)
	if err != nil {
		return err
	}

	if b.cfg.UserDataDir != "" {
		err = b.launchPersistent(bt)
	} else {
		err = b.launchStandard(bt)
	}
	if err != nil {
		return fmt.Errorf("запуск %s: %w", b.cfg.Name, err)
	}
	return nil
}

// Page возвращает текущую страницу или nil, если браузер не запущен.
func (b *PlaywrightBrowser) Page() *PlaywrightPage {
	return b.getPage()
}

func (b *PlaywrightBrowser) Name() string {
	return b.cfg.Name
}

func (b *PlaywrightBrowser) Navigate(ctx context.Context, url string) error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	navCtx, cancel := context.WithTimeout(ctx, b.cfg.NavigateTimeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		_, err := page.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateNetworkidle,
			Timeout:   playwright.Float(float64(b.cfg.NavigateTimeout.Milliseconds())),
		})
		errChan <- err
	}()

	select {
	case <-navCtx.Done():
		return fmt.Errorf("navigate timeout after %v", b.cfg.NavigateTimeout)
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("переход на %s: %w", url, err)
		}
	}
	return nil
}

func (b *PlaywrightBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			return err
		}
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
	}
	if b.pw != nil {
		return b.pw.Stop()
	}
	return nil
}
