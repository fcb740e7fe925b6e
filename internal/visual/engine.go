package visual

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
)

const (
	StrategyStandard              = "standard"
	StrategyResolutionIndependent = "resolution-independent"
	StrategyContentFocused        = "content-focused"
	StrategyFinal                 = "final-fallback"
	StrategyTolerated             = "tolerance-accepted"
	StrategyPage                  = "page"
)

// Recorder получает итог каждой проверки элемента или страницы.
type Recorder interface {
	RecordVisual(ctx context.Context, outcome Outcome) error
}

type Outcome struct {
	TestID          string
	Selector        string
	Strategy        string
	Passed          bool
	Tolerated       bool
	BaselineCreated bool
	DiffPixels      int
	Ratio           float64
	ArtifactDir     string
	Duration        time.Duration
}

type EngineConfig struct {
	BaselineDir   string
	ComparisonDir string
	Env           Environment

	VisibilityTimeout time.Duration
	StabilityInterval time.Duration
	StabilityChecks   int
	ContentGrid       int

	Recorder Recorder
}

// Engine делает снимки через browser.Page и сравнивает их с эталонами.
// Эталон один на testID, его пишет первый вызов.
type Engine struct {
	page        browser.Page
	cfg         EngineConfig
	baselines   *ImageStore
	comparisons *ImageStore
	log         *zap.Logger
	now         func() time.Time
}

func NewEngine(page browser.Page, cfg EngineConfig, log *zap.Logger) *Engine {
	if cfg.BaselineDir == "" {
		cfg.BaselineDir = "test-results/visual-baselines"
	}
	if cfg.ComparisonDir == "" {
		cfg.ComparisonDir = "test-results/visual-comparisons"
	}
	if cfg.VisibilityTimeout == 0 {
		cfg.VisibilityTimeout = 30 * time.Second
	}
	if cfg.StabilityInterval == 0 {
		cfg.StabilityInterval = 200 * time.Millisecond
	}
	if cfg.StabilityChecks == 0 {
		cfg.StabilityChecks = 3
	}
	if cfg.ContentGrid == 0 {
		cfg.ContentGrid = 64
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		page:        page,
		cfg:         cfg,
		baselines:   NewImageStore(cfg.BaselineDir),
		comparisons: NewImageStore(cfg.ComparisonDir),
		log:         log.Named("visual"),
		now:         time.Now,
	}
}

type strategy struct {
	name string
	cmp  CompareOptions
	grid int
}

func standardCompare(opts Options) CompareOptions {
	return CompareOptions{
		Threshold:         opts.Threshold,
		MaxDiffPixels:     opts.MaxDiffPixels,
		MaxDiffPixelRatio: opts.MaxDiffPixelRatio,
		Mode:              opts.Mode,
	}
}

// strategies возвращает стратегии в порядке роста допуска.
func (e *Engine) strategies(opts Options) []strategy {
	std := standardCompare(opts)

	resolution := std
	resolution.Threshold = math.Max(opts.Threshold, 0.3)
	resolution.MaxDiffPixelRatio = math.Max(opts.MaxDiffPixelRatio, 0.25)
	resolution.ScaleToFit = true

	content := std
	content.Threshold = 0.5
	content.MaxDiffPixelRatio = 0.4

	final := std
	final.Threshold = 0.7
	final.MaxDiffPixels = 1_000_000
	final.MaxDiffPixelRatio = 0.8
	final.ScaleToFit = opts.ScaleToFit

	return []strategy{
		{name: StrategyStandard, cmp: std},
		{name: StrategyResolutionIndependent, cmp: resolution},
		{name: StrategyContentFocused, cmp: content, grid: e.cfg.ContentGrid},
		{name: StrategyFinal, cmp: final},
	}
}

// AssertElement сравнивает снимок элемента с эталоном <testID>-element.png.
func (e *Engine) AssertElement(ctx context.Context, selector, testID string, opts Options) (bool, error) {
	start := e.now()
	log := e.log.With(zap.String("test_id", testID), zap.String("selector", selector))

	var (
		passed bool
		out    Outcome
		err    error
	)
	if opts.MultiStrategy() {
		passed, out, err = e.assertMultiStrategy(ctx, log, selector, testID, opts)
	} else {
		passed, out, err = e.assertWithRetries(ctx, log, selector, testID, opts)
	}

	out.TestID, out.Selector = testID, selector
	out.Duration = e.now().Sub(start)
	e.record(ctx, out)
	return passed, err
}

func (e *Engine) assertMultiStrategy(ctx context.Context, log *zap.Logger, selector, testID string, opts Options) (bool, Outcome, error) {
	log.Info("визуальная проверка, несколько стратегий")

	if err := e.page.WaitVisible(ctx, selector, e.cfg.VisibilityTimeout); err != nil {
		return false, Outcome{Strategy: StrategyStandard}, err
	}
	if opts.StabilityChecks {
		e.waitForStability(ctx, log, selector, opts)
	}

	var (
		last    Outcome
		lastErr error
	)
	for _, s := range e.strategies(opts) {
		out, err := e.compareElement(ctx, selector, testID, s, opts.Animations)
		if err == nil {
			log.Info("визуальная проверка пройдена", zap.String("strategy", s.name))
			return true, out, nil
		}
		if ctx.Err() != nil {
			return false, out, err
		}
		log.Info("стратегия не прошла", zap.String("strategy", s.name), zap.Error(err))
		last, lastErr = out, err
	}

	if opts.AcceptOnExhaustion {
		log.Warn("все стратегии исчерпаны, результат принят как приблизительное визуальное соответствие",
			zap.NamedError("last_error", lastErr))
		return true, Outcome{
			Strategy:   StrategyTolerated,
			Passed:     true,
			Tolerated:  true,
			DiffPixels: last.DiffPixels,
			Ratio:      last.Ratio,
		}, nil
	}
	return false, last, lastErr
}

func (e *Engine) assertWithRetries(ctx context.Context, log *zap.Logger, selector, testID string, opts Options) (bool, Outcome, error) {
	var last Outcome
	err := retryAction(ctx, opts.MaxRetries, opts.WaitBetweenAttempts, func(attempt int) error {
		log.Info("визуальная проверка", zap.Int("attempt", attempt), zap.Int("max", max(opts.MaxRetries, 1)))

		if err := e.page.WaitVisible(ctx, selector, e.cfg.VisibilityTimeout); err != nil {
			last = Outcome{Strategy: StrategyStandard}
			return err
		}
		if opts.StabilityChecks {
			e.waitForStability(ctx, log, selector, opts)
		}

		out, err := e.compareElement(ctx, selector, testID, strategy{name: StrategyStandard, cmp: standardCompare(opts)}, opts.Animations)
		last = out
		if err != nil {
			log.Info("попытка не прошла", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
	if err == nil {
		return true, last, nil
	}
	if ctx.Err() != nil {
		return false, last, err
	}

	dir := e.captureFailure(ctx, selector, testID, err)
	last.ArtifactDir = dir

	var mismatch *MismatchError
	if errors.As(err, &mismatch) {
		mismatch.ArtifactDir = dir
		return false, last, err
	}
	return false, last, fmt.Errorf("%s: %w (артефакты: %s)", testID, err, dir)
}

// AssertPage сравнивает снимок страницы с эталоном <testID>-page.png за одну попытку.
func (e *Engine) AssertPage(ctx context.Context, testID string, opts Options) (bool, error) {
	start := e.now()
	e.log.Info("визуальная проверка страницы", zap.String("test_id", testID))

	shot, err := e.page.Screenshot(ctx, "", browser.ScreenshotOptions{
		FullPage:          opts.FullPage,
		DisableAnimations: opts.Animations == AnimationsDisabled,
	})
	if err != nil {
		return false, fmt.Errorf("снимок страницы: %w", err)
	}

	out, err := e.compareShot(testID, "page", strategy{name: StrategyPage, cmp: standardCompare(opts)}, shot)
	out.TestID = testID
	out.Duration = e.now().Sub(start)
	e.record(ctx, out)
	return err == nil, err
}

func (e *Engine) compareElement(ctx context.Context, selector, testID string, s strategy, animations string) (Outcome, error) {
	shot, err := e.page.Screenshot(ctx, selector, browser.ScreenshotOptions{
		DisableAnimations: animations == AnimationsDisabled,
	})
	if err != nil {
		return Outcome{Strategy: s.name}, fmt.Errorf("снимок %q: %w", selector, err)
	}
	return e.compareShot(testID, "element", s, shot)
}

func (e *Engine) compareShot(testID, kind string, s strategy, shot []byte) (Outcome, error) {
	out := Outcome{Strategy: s.name}
	name := testID + "-" + kind + ".png"

	baseline, ok, err := e.baselines.Load(name)
	if err != nil {
		return out, err
	}
	if !ok {
		path, err := e.baselines.SaveBytes(name, shot)
		if err != nil {
			return out, fmt.Errorf("запись эталона: %w", err)
		}
		e.log.Info("эталон создан", zap.String("path", path))
		out.Passed, out.BaselineCreated = true, true
		return out, nil
	}

	actual, err := decodePNG(shot)
	if err != nil {
		return out, err
	}

	if s.grid > 0 {
		baseline, actual = Downsample(baseline, s.grid), Downsample(actual, s.grid)
	}
	res := Compare(baseline, actual, s.cmp)
	out.DiffPixels, out.Ratio = res.DiffPixels, res.Ratio
	if res.Passed {
		out.Passed = true
		return out, nil
	}

	e.saveComparison(testID, s.name, shot, res)
	out.ArtifactDir = e.comparisons.Dir()
	return out, &MismatchError{
		TestID:      testID,
		Strategy:    s.name,
		Result:      res,
		ArtifactDir: e.comparisons.Dir(),
	}
}

func (e *Engine) saveComparison(testID, strategyName string, shot []byte, res Result) {
	prefix := testID + "-" + strategyName
	if _, err := e.comparisons.SaveBytes(prefix+"-actual.png", shot); err != nil {
		e.log.Warn("не удалось сохранить снимок", zap.Error(err))
	}
	if res.Diff == nil {
		return
	}
	if _, err := e.comparisons.Save(prefix+"-diff.png", res.Diff); err != nil {
		e.log.Warn("не удалось сохранить карту отличий", zap.Error(err))
	}
}

func (e *Engine) record(ctx context.Context, out Outcome) {
	if e.cfg.Recorder == nil {
		return
	}
	if err := e.cfg.Recorder.RecordVisual(ctx, out); err != nil {
		e.log.Warn("не удалось сохранить результат проверки", zap.Error(err))
	}
}
