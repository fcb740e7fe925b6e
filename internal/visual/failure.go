package visual

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
)

// FailureContext пишется в failure-context.json рядом со снимками провала.
type FailureContext struct {
	TestName        string                 `json:"testName"`
	ElementSelector string                 `json:"elementSelector"`
	Error           string                 `json:"error"`
	Timestamp       string                 `json:"timestamp"`
	PageURL         string                 `json:"pageUrl"`
	Viewport        browser.ViewportBounds `json:"viewport"`
	Browser         string                 `json:"browser"`
	Environment     string                 `json:"environment"`
	UserAgent       string                 `json:"userAgent"`
}

// captureFailure сохраняет снимок страницы, снимок элемента (если он виден)
// и контекст в <comparisons>/failures/<timestamp>/. Ошибки записи только логируются.
func (e *Engine) captureFailure(ctx context.Context, selector, testID string, cause error) string {
	now := e.now().UTC()
	stamp := strings.ReplaceAll(now.Format("2006-01-02T15-04-05.000Z"), ".", "-")
	store := NewImageStore(filepath.Join(e.comparisons.Dir(), "failures", stamp))
	log := e.log.With(zap.String("test_id", testID), zap.String("dir", store.Dir()))

	if shot, err := e.page.Screenshot(ctx, "", browser.ScreenshotOptions{FullPage: true}); err != nil {
		log.Warn("не удалось снять страницу", zap.Error(err))
	} else if _, err := store.SaveBytes(testID+"-context-page.png", shot); err != nil {
		log.Warn("не удалось сохранить снимок страницы", zap.Error(err))
	}

	if visible, err := e.page.IsVisible(ctx, selector); err == nil && visible {
		if shot, err := e.page.Screenshot(ctx, selector, browser.ScreenshotOptions{}); err != nil {
			log.Info("не удалось снять элемент", zap.Error(err))
		} else if _, err := store.SaveBytes(testID+"-failed-element.png", shot); err != nil {
			log.Warn("не удалось сохранить снимок элемента", zap.Error(err))
		}
	}

	fc := FailureContext{
		TestName:        testID,
		ElementSelector: selector,
		Error:           cause.Error(),
		Timestamp:       now.Format(time.RFC3339Nano),
		Browser:         orUnknown(e.cfg.Env.Browser),
		Environment:     orUnknown(e.cfg.Env.Name),
	}
	if info, err := e.page.Info(ctx); err != nil {
		log.Warn("не удалось получить сведения о странице", zap.Error(err))
	} else {
		fc.PageURL, fc.Viewport, fc.UserAgent = info.URL, info.Viewport, info.UserAgent
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err == nil {
		if err = os.MkdirAll(store.Dir(), 0o755); err == nil {
			err = os.WriteFile(store.Path("failure-context.json"), data, 0o644)
		}
	}
	if err != nil {
		log.Error("не удалось сохранить контекст провала", zap.Error(err))
	}

	log.Info("детали провала сохранены")
	return store.Dir()
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
