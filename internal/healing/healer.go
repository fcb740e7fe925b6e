package healing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
)

const (
	StrategyOriginal  = "original"
	StrategySnapshot  = "snapshot"
	StrategyLive      = "live"
	StrategySuggester = "suggester"
	StrategyNone      = "none"
)

// Suggester предлагает селектор, когда детерминированные стратегии не справились.
type Suggester interface {
	SuggestSelector(ctx context.Context, markup, hint string) (string, error)
}

// Recorder получает по событию на каждое действие через Healer.
type Recorder interface {
	RecordHealing(ctx context.Context, event Event) error
}

type Event struct {
	Action           string
	OriginalSelector string
	HealedSelector   string
	Hint             string
	Strategy         string
	SnapshotPath     string
	Healed           bool
	Error            string
	Duration         time.Duration
}

// Resolution хранит итог поиска рабочего селектора.
type Resolution struct {
	Selector     string
	Strategy     string
	SnapshotPath string
}

func (r Resolution) Healed() bool {
	switch r.Strategy {
	case StrategySnapshot, StrategyLive, StrategySuggester:
		return true
	}
	return false
}

type Option func(*Healer)

func WithSuggester(s Suggester) Option {
	return func(h *Healer) { h.suggester = s }
}

func WithRecorder(r Recorder) Option {
	return func(h *Healer) { h.recorder = r }
}

// Healer выполняет действия со страницей, подменяя исчезнувший селектор
// найденным по подсказке. Между собой вызовы не разделяют состояния,
// кроме каталога снимков.
type Healer struct {
	store     *SnapshotStore
	log       *zap.Logger
	suggester Suggester
	recorder  Recorder
}

func New(store *SnapshotStore, log *zap.Logger, opts ...Option) *Healer {
	if store == nil {
		store = NewSnapshotStore("")
	}
	if log == nil {
		log = zap.NewNop()
	}
	h := &Healer{store: store, log: log.Named("healing")}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Healer) Click(ctx context.Context, page browser.Page, selector, hint, snapshot string) error {
	return h.do(ctx, page, "click", selector, hint, orDefault(snapshot, "healing-click"), func(sel string) error {
		return page.Click(ctx, sel)
	})
}

func (h *Healer) Fill(ctx context.Context, page browser.Page, selector, text, hint, snapshot string) error {
	return h.do(ctx, page, "fill", selector, hint, orDefault(snapshot, "healing-fill"), func(sel string) error {
		return page.Fill(ctx, sel, text)
	})
}

// IsVisible сообщает видимость элемента по исходному или восстановленному селектору.
func (h *Healer) IsVisible(ctx context.Context, page browser.Page, selector, hint, snapshot string) (bool, error) {
	var visible bool
	err := h.do(ctx, page, "visible", selector, hint, orDefault(snapshot, "healing-visible"), func(sel string) error {
		v, err := page.IsVisible(ctx, sel)
		visible = v
		return err
	})
	return visible, err
}

func (h *Healer) do(ctx context.Context, page browser.Page, action, selector, hint, snapshot string, act func(string) error) error {
	start := time.Now()
	log := h.log.With(zap.String("action", action), zap.String("selector", selector))

	res, err := h.Resolve(ctx, page, selector, hint, snapshot)
	var recErr *RecoveryError
	if errors.As(err, &recErr) {
		recErr.Action = action
		log.Error("селектор не восстановлен", zap.String("hint", hint), zap.String("snapshot", recErr.Snapshot))
	}
	if err == nil {
		if res.Healed() {
			log.Info("селектор восстановлен",
				zap.String("healed", res.Selector),
				zap.String("strategy", res.Strategy))
		} else {
			log.Debug("использован исходный селектор")
		}
		if err = act(res.Selector); err != nil {
			err = fmt.Errorf("%s %q: %w", action, res.Selector, err)
		}
	}

	h.record(ctx, Event{
		Action:           action,
		OriginalSelector: selector,
		HealedSelector:   res.Selector,
		Hint:             hint,
		Strategy:         res.Strategy,
		SnapshotPath:     res.SnapshotPath,
		Healed:           res.Healed(),
		Error:            errString(err),
		Duration:         time.Since(start),
	})
	return err
}

// Resolve возвращает рабочий селектор. Если исходный находит хотя бы один
// элемент, снимок не пишется. Иначе: снимок, разбор снимка, живая эвристика,
// затем Suggester, если задан.
func (h *Healer) Resolve(ctx context.Context, page browser.Page, selector, hint, snapshot string) (Resolution, error) {
	count, err := page.Count(ctx, selector)
	if err != nil {
		return Resolution{Strategy: StrategyNone}, fmt.Errorf("поиск %q: %w", selector, err)
	}
	if count > 0 {
		return Resolution{Selector: selector, Strategy: StrategyOriginal}, nil
	}

	log := h.log.With(zap.String("selector", selector), zap.String("hint", hint))
	log.Info("исходный селектор не найден, восстанавливаем")

	path, err := h.store.Capture(ctx, page, snapshot)
	if err != nil {
		return Resolution{Strategy: StrategyNone}, fmt.Errorf("снимок DOM: %w", err)
	}
	if err := page.WaitForLoadState(ctx, "networkidle"); err != nil {
		log.Debug("networkidle не дождались", zap.Error(err))
	}

	markup, err := h.store.Read(snapshot)
	if err != nil {
		return Resolution{Strategy: StrategyNone, SnapshotPath: path}, err
	}
	log.Debug("снимок сохранен", zap.String("path", path), zap.Int("size", len(markup)))

	if sel, ok := FindAlternativeSelector(markup, hint); ok {
		return Resolution{Selector: sel, Strategy: StrategySnapshot, SnapshotPath: path}, nil
	}

	log.Debug("в снимке совпадений нет, пробуем живую эвристику")
	sel, ok, err := FindAlternativeSelectorLive(ctx, page, hint)
	if err != nil {
		log.Warn("живая эвристика не отработала", zap.Error(err))
	}
	if ok {
		return Resolution{Selector: sel, Strategy: StrategyLive, SnapshotPath: path}, nil
	}

	if sel, ok := h.suggest(ctx, page, markup, hint); ok {
		return Resolution{Selector: sel, Strategy: StrategySuggester, SnapshotPath: path}, nil
	}

	return Resolution{Strategy: StrategyNone, SnapshotPath: path}, &RecoveryError{
		Selector: selector,
		Hint:     hint,
		Snapshot: path,
	}
}

func (h *Healer) suggest(ctx context.Context, page browser.Page, markup, hint string) (string, bool) {
	if h.suggester == nil || hint == "" {
		return "", false
	}

	sel, err := h.suggester.SuggestSelector(ctx, markup, hint)
	if err != nil {
		h.log.Warn("подсказчик селекторов вернул ошибку", zap.Error(err))
		return "", false
	}
	if err := browser.ValidateSelector(sel); err != nil {
		h.log.Warn("подсказчик вернул невалидный селектор", zap.String("selector", sel), zap.Error(err))
		return "", false
	}

	// Предложение принимается, только если оно что-то находит.
	count, err := page.Count(ctx, sel)
	if err != nil || count == 0 {
		h.log.Warn("предложенный селектор ничего не нашел", zap.String("selector", sel))
		return "", false
	}
	return sel, true
}

func (h *Healer) record(ctx context.Context, ev Event) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.RecordHealing(ctx, ev); err != nil {
		h.log.Warn("не удалось сохранить событие лечения", zap.Error(err))
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
