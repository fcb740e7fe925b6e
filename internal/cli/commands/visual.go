package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/cli/ui"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/visual"
)

type visualFlags struct {
	url       string
	testName  string
	category  string
	threshold float64
	multi     bool
}

func NewVisualCommand(env *Env) *cobra.Command {
	var f visualFlags
	cmd := &cobra.Command{
		Use:   "visual",
		Short: "Визуальные проверки элементов и страниц против эталонов",
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.url, "url", "", "адрес страницы (по умолчанию BASE_URL)")
	pf.StringVar(&f.testName, "test-name", "", "имя теста: из него строятся имена эталонов и категория")
	pf.StringVar(&f.category, "category", "", "категория конфигурации вместо определения по имени теста")
	pf.Float64Var(&f.threshold, "threshold", 0, "порог чувствительности 0..1 поверх конфигурации")
	pf.BoolVar(&f.multi, "multi", false, "эскалация стратегий сравнения")
	_ = cmd.MarkPersistentFlagRequired("test-name")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "element <key|selector>...",
			Short: "Сравнить элементы с эталонами",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runVisual(cmd, env, f, func(ctx context.Context, m *visual.Manager) ([]visual.ElementResult, error) {
					return m.AssertMultipleElements(ctx, args, overrides(cmd, f)), nil
				})
			},
		},
		&cobra.Command{
			Use:   "page",
			Short: "Сравнить страницу целиком",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runVisual(cmd, env, f, func(ctx context.Context, m *visual.Manager) ([]visual.ElementResult, error) {
					_, err := m.AssertPage(ctx, overrides(cmd, f))
					return []visual.ElementResult{elementResult("page", err)}, nil
				})
			},
		},
		&cobra.Command{
			Use:   "detect [container]",
			Short: "Найти значимые элементы и сравнить каждый",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				container := "body"
				if len(args) == 1 {
					container = args[0]
				}
				return runVisual(cmd, env, f, func(ctx context.Context, m *visual.Manager) ([]visual.ElementResult, error) {
					return m.DetectAndAssertElements(ctx, container, overrides(cmd, f))
				})
			},
		},
	)
	return cmd
}

// overrides собирает явные параметры только из флагов, заданных пользователем.
func overrides(cmd *cobra.Command, f visualFlags) visual.Overrides {
	changed := func(name string) bool {
		fl := cmd.Flag(name)
		return fl != nil && fl.Changed
	}
	var o visual.Overrides
	if changed("threshold") {
		o.Threshold = visual.Float(f.threshold)
	}
	if changed("multi") {
		o.ResolutionIndependent = visual.Bool(f.multi)
		o.FocusOnContent = visual.Bool(f.multi)
		o.ScaleToFit = visual.Bool(f.multi)
	}
	return o
}

func elementResult(name string, err error) visual.ElementResult {
	r := visual.ElementResult{Element: name, Status: visual.StatusPassed, Err: err}
	if err != nil {
		r.Status = visual.StatusFailed
	}
	return r
}

func runVisual(cmd *cobra.Command, env *Env, f visualFlags, run func(context.Context, *visual.Manager) ([]visual.ElementResult, error)) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	vcfg, err := visual.LoadConfig(env.Cfg.Visual.ConfigPath)
	if err != nil {
		return err
	}

	page, closePage, err := env.open(ctx, f.url)
	if err != nil {
		return err
	}
	defer closePage()

	m := newManager(env, vcfg, page, f)
	fmt.Fprintf(out, ui.ColorBold+ui.IconEye+" %s"+ui.ColorReset+" (категория %s)\n", m.TestName(), m.Category())

	results, err := run(ctx, m)
	if err != nil {
		return err
	}
	return printResults(out, env.Log, results)
}

func newManager(env *Env, vcfg *visual.Config, page browser.Page, f visualFlags) *visual.Manager {
	var opts []visual.ManagerOption
	if f.category != "" {
		opts = append(opts, visual.WithCategory(f.category))
	}
	resolver := visual.Resolver{Config: vcfg, Env: env.environment()}
	return visual.NewManager(page, env.engine(page), resolver, f.testName, env.Log, opts...)
}

func printResults(out io.Writer, log *zap.Logger, results []visual.ElementResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			ui.PrintStatus(out, r.Status, r.Element)
			ui.PrintField(out, "Ошибка", r.Err.Error())
			continue
		}
		ui.PrintStatus(out, r.Status, fmt.Sprintf("%s (%v)", r.Element, r.Duration.Round(time.Millisecond)))
	}
	fmt.Fprintf(out, "\nИтого: %d, прошло %d, провалено %d\n", len(results), len(results)-failed, failed)

	if failed > 0 {
		log.Debug("визуальные проверки провалены", zap.Int("failed", failed))
		return fmt.Errorf("%w: провалено проверок: %d", visual.ErrVisualMismatch, failed)
	}
	return nil
}
