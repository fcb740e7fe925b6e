package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/cli/ui"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/healing"
)

type healFlags struct {
	url      string
	hint     string
	snapshot string
}

// NewHealCommand выполняет действия над элементом с лечением селектора.
func NewHealCommand(env *Env) *cobra.Command {
	var f healFlags
	cmd := &cobra.Command{
		Use:   "heal",
		Short: "Действие над элементом с восстановлением устаревшего селектора",
	}
	cmd.PersistentFlags().StringVar(&f.url, "url", "", "адрес страницы (по умолчанию BASE_URL)")
	cmd.PersistentFlags().StringVar(&f.hint, "hint", "", "подсказка для поиска замены: часть id, name, placeholder или текста")
	cmd.PersistentFlags().StringVar(&f.snapshot, "snapshot", "", "имя снимка DOM")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "click <selector>",
			Short: "Клик",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runHeal(cmd, env, f, func(ctx context.Context, h *healing.Healer, page browser.Page) error {
					return h.Click(ctx, page, args[0], f.hint, f.snapshot)
				})
			},
		},
		&cobra.Command{
			Use:   "fill <selector> <text>",
			Short: "Ввод текста",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runHeal(cmd, env, f, func(ctx context.Context, h *healing.Healer, page browser.Page) error {
					return h.Fill(ctx, page, args[0], args[1], f.hint, f.snapshot)
				})
			},
		},
		&cobra.Command{
			Use:   "visible <selector>",
			Short: "Проверка видимости",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runHeal(cmd, env, f, func(ctx context.Context, h *healing.Healer, page browser.Page) error {
					visible, err := h.IsVisible(ctx, page, args[0], f.hint, f.snapshot)
					if err == nil {
						ui.PrintField(cmd.OutOrStdout(), "Видимость", fmt.Sprint(visible))
					}
					return err
				})
			},
		},
	)
	return cmd
}

func runHeal(cmd *cobra.Command, env *Env, f healFlags, act func(context.Context, *healing.Healer, browser.Page) error) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	page, closePage, err := env.open(ctx, f.url)
	if err != nil {
		return err
	}
	defer closePage()

	tap := &eventTap{next: env.Results}
	err = act(ctx, env.healer(tap), page)

	ev := tap.last
	switch {
	case err != nil:
		ui.PrintError(out, "Элемент не найден", err)
	case ev.Healed:
		ui.PrintStatus(out, "healed", ev.HealedSelector)
	default:
		ui.PrintStatus(out, "original", ev.OriginalSelector)
	}
	if ev.Strategy != "" {
		ui.PrintField(out, "Стратегия", ev.Strategy)
	}
	if ev.SnapshotPath != "" {
		ui.PrintField(out, "Снимок DOM", ev.SnapshotPath)
	}
	return err
}

// eventTap запоминает последнее событие и передает его дальше в хранилище.
type eventTap struct {
	last healing.Event
	next healing.Recorder
}

func (t *eventTap) RecordHealing(ctx context.Context, ev healing.Event) error {
	t.last = ev
	if t.next == nil {
		return nil
	}
	return t.next.RecordHealing(ctx, ev)
}
