package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightPage реализует Page поверх playwright.Page.
// Действия выполняются над первым совпадением, как page.click в playwright.
type PlaywrightPage struct {
	page    playwright.Page
	timeout time.Duration
}

var _ Page = (*PlaywrightPage)(nil)

func NewPlaywrightPage(page playwright.Page, timeout time.Duration) *PlaywrightPage {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &PlaywrightPage{page: page, timeout: timeout}
}

// Raw отдает исходную страницу playwright для операций вне Page.
func (p *PlaywrightPage) Raw() playwright.Page {
	return p.page
}

// locator нормализует селектор (:contains → :has-text) перед обращением к странице.
func (p *PlaywrightPage) locator(selector string) playwright.Locator {
	normalized, _ := NormalizeSelector(selector)
	return p.page.Locator(normalized)
}

func (p *PlaywrightPage) ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *PlaywrightPage) Count(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := ValidateSelector(selector); err != nil {
		return 0, fmt.Errorf("невалидный селектор: %w", err)
	}
	return p.locator(selector).Count()
}

func (p *PlaywrightPage) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: p.ms(p.timeout),
	})
}

func (p *PlaywrightPage) Fill(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.locator(selector).First().Fill(text, playwright.LocatorFillOptions{
		Timeout: p.ms(p.timeout),
	})
}

func (p *PlaywrightPage) IsVisible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return p.locator(selector).First().IsVisible()
}

func (p *PlaywrightPage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: p.ms(timeout),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return &TimeoutError{Selector: selector, State: "visible", Timeout: timeout}
	}
	return err
}

func (p *PlaywrightPage) WaitForLoadState(ctx context.Context, state string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   loadState(state),
		Timeout: p.ms(p.timeout),
	})
}

func (p *PlaywrightPage) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Content()
}

func (p *PlaywrightPage) Screenshot(ctx context.Context, selector string, opts ScreenshotOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var animations *playwright.ScreenshotAnimations
	if opts.DisableAnimations {
		animations = playwright.ScreenshotAnimationsDisabled
	}

	if selector == "" {
		return p.page.Screenshot(playwright.PageScreenshotOptions{
			FullPage:   playwright.Bool(opts.FullPage),
			Animations: animations,
		})
	}
	return p.locator(selector).First().Screenshot(playwright.LocatorScreenshotOptions{
		Animations: animations,
		Timeout:    p.ms(p.timeout),
	})
}

func (p *PlaywrightPage) QueryElements(ctx context.Context, scope, selector string) ([]ElementInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var locator playwright.Locator
	if scope == "" {
		locator = p.locator(selector)
	} else {
		locator = p.locator(scope).First().Locator(selector)
	}

	result, err := locator.EvaluateAll(collectElementsJS)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения JavaScript: %w", err)
	}
	return parseElements(result), nil
}

func (p *PlaywrightPage) Info(ctx context.Context) (PageInfo, error) {
	if err := ctx.Err(); err != nil {
		return PageInfo{}, err
	}

	info := PageInfo{URL: p.page.URL()}
	if size := p.page.ViewportSize(); size != nil {
		info.Viewport = ViewportBounds{Width: float64(size.Width), Height: float64(size.Height)}
	}

	ua, err := p.page.Evaluate(`() => navigator.userAgent`)
	if err != nil {
		return info, fmt.Errorf("чтение userAgent: %w", err)
	}
	info.UserAgent, _ = ua.(string)
	return info, nil
}
