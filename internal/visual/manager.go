package visual

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
)

const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

type ElementResult struct {
	Element  string
	Status   string
	Duration time.Duration
	Err      error
}

// Resolver связывает конфигурацию с окружением запуска.
type Resolver struct {
	Config *Config
	Env    Environment
}

func (r Resolver) Resolve(category string, explicit Overrides) Resolved {
	cfg := r.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return cfg.Resolve(category, r.Env, explicit)
}

type ManagerOption func(*Manager)

// WithCategory задает категорию явно, без разбора имени теста.
func WithCategory(category string) ManagerOption {
	return func(m *Manager) { m.category = category }
}

// WithOverrides добавляет явные параметры поверх всех слоев конфигурации.
func WithOverrides(o Overrides) ManagerOption {
	return func(m *Manager) { m.explicit = o }
}

// Manager превращает ключи элементов в визуальные проверки одного теста.
type Manager struct {
	page     browser.Page
	engine   *Engine
	testName string
	category string
	explicit Overrides
	resolved Resolved
	log      *zap.Logger
}

func NewManager(page browser.Page, engine *Engine, resolver Resolver, testName string, log *zap.Logger, opts ...ManagerOption) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		page:     page,
		engine:   engine,
		testName: SanitizeTestName(testName),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.category == "" {
		m.category = CategoryFromTestName(testName)
	}
	m.resolved = resolver.Resolve(m.category, m.explicit)
	m.log = log.Named("visual").With(zap.String("test", m.testName), zap.String("category", m.category))
	return m
}

func (m *Manager) TestName() string { return m.testName }

func (m *Manager) Category() string { return m.category }

// Options возвращает параметры после слияния всех слоев.
func (m *Manager) Options() Options { return m.resolved.Options }

// ResolveSelector: карта элементов категории, затем сам ключ, если он похож
// на селектор, затем запасная таблица, затем ключ как есть.
func (m *Manager) ResolveSelector(key string) string {
	if sel, ok := m.resolved.Elements[key]; ok && sel != "" {
		m.log.Debug("селектор из конфигурации", zap.String("key", key), zap.String("selector", sel))
		return sel
	}
	if browser.LooksLikeSelector(key) {
		return key
	}
	if sel, ok := FallbackSelector(key); ok {
		m.log.Debug("запасной селектор", zap.String("key", key), zap.String("selector", sel))
		return sel
	}
	m.log.Warn("ключ используется как селектор без проверки", zap.String("key", key))
	return key
}

func (m *Manager) GenerateShortID(elementKey string) string {
	return ShortID(m.testName, elementKey)
}

func (m *Manager) options(extra []Overrides) Options {
	opts := m.resolved.Options
	for _, o := range extra {
		opts = o.Apply(opts)
	}
	return opts
}

func (m *Manager) AssertElement(ctx context.Context, key string, extra ...Overrides) (bool, error) {
	selector := m.ResolveSelector(key)
	m.log.Info("проверка элемента", zap.String("element", key), zap.String("selector", selector))
	return m.engine.AssertElement(ctx, selector, m.GenerateShortID(key), m.options(extra))
}

// AssertCustomElement проверяет произвольный селектор под заданным именем.
func (m *Manager) AssertCustomElement(ctx context.Context, selector, name string, extra ...Overrides) (bool, error) {
	m.log.Info("проверка элемента", zap.String("element", name), zap.String("selector", selector))
	return m.engine.AssertElement(ctx, selector, m.GenerateShortID(name), m.options(extra))
}

func (m *Manager) AssertPage(ctx context.Context, extra ...Overrides) (bool, error) {
	return m.engine.AssertPage(ctx, m.GenerateShortID("page"), m.options(extra))
}

func (m *Manager) AssertElementResolutionIndependent(ctx context.Context, key string, extra ...Overrides) (bool, error) {
	return m.AssertElement(ctx, key, append(extra, Overrides{
		ResolutionIndependent: Bool(true),
		ScaleToFit:            Bool(true),
	})...)
}

func (m *Manager) AssertElementContentFocused(ctx context.Context, key string, extra ...Overrides) (bool, error) {
	return m.AssertElement(ctx, key, append(extra, Overrides{
		FocusOnContent:    Bool(true),
		Threshold:         Float(0.5),
		MaxDiffPixelRatio: Float(0.4),
	})...)
}

func (m *Manager) AssertElementMultiStrategy(ctx context.Context, key string, extra ...Overrides) (bool, error) {
	return m.AssertElement(ctx, key, append(extra, Overrides{
		ResolutionIndependent: Bool(true),
		FocusOnContent:        Bool(true),
		ScaleToFit:            Bool(true),
	})...)
}

// AssertMultipleElements проверяет ключи по очереди. Провал одного не
// останавливает остальные.
func (m *Manager) AssertMultipleElements(ctx context.Context, keys []string, extra ...Overrides) []ElementResult {
	m.log.Info("проверка набора элементов", zap.Int("count", len(keys)))

	results := make([]ElementResult, 0, len(keys))
	passed := 0
	for _, key := range keys {
		start := time.Now()
		_, err := m.AssertElement(ctx, key, extra...)
		r := ElementResult{Element: key, Status: StatusPassed, Duration: time.Since(start)}
		if err != nil {
			r.Status, r.Err = StatusFailed, err
			m.log.Info("элемент не прошел", zap.String("element", key), zap.Duration("duration", r.Duration), zap.Error(err))
		} else {
			passed++
			m.log.Info("элемент прошел", zap.String("element", key), zap.Duration("duration", r.Duration))
		}
		results = append(results, r)
	}

	m.log.Info("итог проверки набора",
		zap.Int("passed", passed),
		zap.Int("failed", len(keys)-passed),
		zap.Int("total", len(keys)))
	return results
}

// DetectAndAssertElements находит значимые элементы внутри контейнера и
// проверяет каждый уникальный селектор.
func (m *Manager) DetectAndAssertElements(ctx context.Context, container string, extra ...Overrides) ([]ElementResult, error) {
	selectors, err := m.DetectElements(ctx, container)
	if err != nil {
		return nil, err
	}
	return m.AssertMultipleElements(ctx, selectors, extra...), nil
}

// DetectElements возвращает селекторы значимых элементов в порядке документа.
func (m *Manager) DetectElements(ctx context.Context, container string) ([]string, error) {
	if container == "" {
		container = "body"
	}
	m.log.Info("поиск значимых элементов", zap.String("container", container))

	elements, err := m.page.QueryElements(ctx, container, "*")
	if err != nil {
		return nil, fmt.Errorf("поиск элементов в %s: %w", container, err)
	}

	seen := map[string]bool{}
	var selectors []string
	for _, el := range elements {
		if !isImportantElement(el) {
			continue
		}
		sel := selectorForElement(el)
		if seen[sel] {
			continue
		}
		seen[sel] = true
		selectors = append(selectors, sel)
	}
	return selectors, nil
}

func isImportantElement(el browser.ElementInfo) bool {
	if importantTags[strings.ToLower(el.Tag)] || el.Attr("id") != "" {
		return true
	}
	class := el.Attr("class")
	for _, word := range importantClassWords {
		if strings.Contains(class, word) {
			return true
		}
	}
	return false
}

func selectorForElement(el browser.ElementInfo) string {
	if id := el.Attr("id"); id != "" {
		return "#" + browser.EscapeIdent(id)
	}
	if classes := strings.Fields(el.Attr("class")); len(classes) > 0 {
		return "." + browser.EscapeIdent(classes[0])
	}
	return strings.ToLower(el.Tag)
}
