package commands

import (
	"github.com/spf13/cobra"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/cli/ui"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/healing"
)

// NewSnapshotCommand сохраняет снимок DOM для будущего офлайн лечения.
func NewSnapshotCommand(env *Env) *cobra.Command {
	var url, name string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Сохранить HTML снимок страницы",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page, closePage, err := env.open(ctx, url)
			if err != nil {
				return err
			}
			defer closePage()

			path, err := healing.NewSnapshotStore(env.Cfg.Visual.SnapshotDir).Capture(ctx, page, name)
			if err != nil {
				return err
			}
			ui.PrintStatus(cmd.OutOrStdout(), "passed", "снимок сохранен")
			ui.PrintField(cmd.OutOrStdout(), "Файл", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "адрес страницы (по умолчанию BASE_URL)")
	cmd.Flags().StringVar(&name, "name", "", "имя снимка")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
