package visual

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
)

// waitForStability снимает элемент с интервалом, пока подряд не совпадут
// StabilityChecks снимков или не выйдет время. Нестабильность не ошибка.
func (e *Engine) waitForStability(ctx context.Context, log *zap.Logger, selector string, opts Options) bool {
	timeout := opts.StabilityTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	start := e.now()
	var last []byte
	stable := 0
	for e.now().Sub(start) < timeout && stable < e.cfg.StabilityChecks {
		shot, err := e.page.Screenshot(ctx, selector, browser.ScreenshotOptions{
			DisableAnimations: opts.Animations == AnimationsDisabled,
		})
		if err != nil {
			log.Info("проверка стабильности прервана", zap.Error(err))
			break
		}

		if last != nil && bytes.Equal(last, shot) {
			stable++
		} else {
			stable = 0
		}
		last = shot

		if stable >= e.cfg.StabilityChecks {
			break
		}
		if err := sleep(ctx, e.cfg.StabilityInterval); err != nil {
			break
		}
	}

	isStable := stable >= e.cfg.StabilityChecks
	elapsed := e.now().Sub(start)
	if isStable {
		log.Debug("элемент стабилен", zap.Duration("elapsed", elapsed))
	} else {
		log.Warn("элемент нестабилен, сравниваем как есть", zap.Duration("elapsed", elapsed))
	}
	return isStable
}
