package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/cli/ui"
)

func NewSelectorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selector",
		Short: "Работа с селекторами без браузера",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <selector>",
		Short: "Проверить и нормализовать селектор",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			sel := args[0]
			if err := browser.ValidateSelector(sel); err != nil {
				ui.PrintError(out, "Невалидный селектор", err)
				return err
			}
			normalized, changed := browser.NormalizeSelector(sel)
			ui.PrintStatus(out, "passed", sel)
			ui.PrintField(out, "Вид", browser.KindOf(sel).String())
			ui.PrintField(out, "Похож на селектор", strconv.FormatBool(browser.LooksLikeSelector(sel)))
			if changed {
				ui.PrintField(out, "Нормализован", normalized)
			}
			return nil
		},
	})
	return cmd
}
