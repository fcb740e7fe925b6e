// Package cli собирает корневую cobra команду фреймворка.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/cli/commands"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/cli/ui"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/config"
)

// New возвращает корневую команду со всеми подкомандами.
func New(env *commands.Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "e2e",
		Short:         "Самовосстанавливающиеся локаторы и визуальные проверки для E2E тестов портала",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		commands.NewHealCommand(env),
		commands.NewVisualCommand(env),
		commands.NewSnapshotCommand(env),
		commands.NewResultsCommand(env),
		commands.NewSelectorCommand(),
	)
	return root
}

// Execute выполняет команду и возвращает код выхода процесса.
func Execute(ctx context.Context, env *commands.Env, args []string) int {
	root := New(env)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		ui.PrintError(root.ErrOrStderr(), "Ошибка", err)
		return 1
	}
	return 0
}

// BrowserOpener запускает отдельный браузер Playwright на каждую команду.
// Секретный заголовок автоматизации добавляется ко всем запросам, если задан.
func BrowserOpener(cfg *config.Cfg, log *zap.Logger) commands.PageOpener {
	return func(ctx context.Context, url string) (browser.Page, func(), error) {
		bcfg := browser.Config{
			Name:            cfg.Browser.Name,
			Headless:        cfg.Browser.Headless,
			UserDataDir:     cfg.Browser.UserDataDir,
			Timeout:         cfg.Browser.Timeout,
			NavigateTimeout: cfg.Browser.NavigateTimeout,
			ViewportWidth:   cfg.Browser.ViewportWidth,
			ViewportHeight:  cfg.Browser.ViewportHeight,
			BaseURL:         cfg.App.BaseURL,
		}
		if cfg.App.SecretValue != "" {
			bcfg.ExtraHeaders = map[string]string{cfg.App.SecretHeader: cfg.App.SecretValue}
		}

		br := browser.New(bcfg)
		closeBrowser := func() {
			if err := br.Close(); err != nil {
				log.Warn("закрытие браузера", zap.Error(err))
			}
		}

		if err := br.Launch(ctx); err != nil {
			closeBrowser()
			return nil, nil, err
		}
		log.Info("браузер запущен", zap.String("browser", br.Name()), zap.String("url", url))

		if err := br.Navigate(ctx, url); err != nil {
			closeBrowser()
			return nil, nil, fmt.Errorf("открытие страницы: %w", err)
		}
		return br.Page(), closeBrowser, nil
	}
}
